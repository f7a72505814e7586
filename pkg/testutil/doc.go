// Package testutil provides utilities for testing condax components.
//
// Key components:
//   - TestEnvironment: an isolated HOME with prefix and bin directories
//   - Package / WritePackage: fabricate conda-meta manifests and the files
//     they list, so discovery runs against a real directory tree
//   - FakeBackend: an Environment Backend that materializes packages from a
//     catalog instead of running conda
//
// All test data is defined inline; tests use real temp directories.
package testutil
