// Package wrapper renders and parses the shim scripts condax places in the
// bin directory.
//
// A shim hands its arguments to "<runner> run --prefix <env> <exe>", where
// the runner is micromamba. Two formats exist: a bash script on POSIX
// systems and a batch file on Windows. Both keep the prefix and executable
// double-quoted on a single line so Parse can recover them, which is how
// condax decides whether a shim in the bin directory still belongs to the
// environment it is about to modify.
package wrapper
