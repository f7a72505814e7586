// Package filesystem provides the OS-backed implementation of types.FS
// used by condax at runtime.
package filesystem
