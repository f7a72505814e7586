// Package shell puts the condax bin directory on the user's PATH.
//
// EnsurePath appends one marked snippet to each existing shell rc file,
// creating ~/.profile when no rc file exists yet. A file that already carries
// the snippet for the same directory is left untouched, so running it again
// changes nothing.
package shell
