// Package executor runs external programs on behalf of condax.
//
// Every backend invocation goes through Executor.Run, which blocks until the
// child exits, streams its output to the configured writers and converts a
// non-zero exit status into a BACKEND_COMMAND error carrying the exit code.
package executor
