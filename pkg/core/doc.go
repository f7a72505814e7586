// Package core reconciles environments, their metadata records and the
// wrappers exposing their apps.
//
// Every operation follows the same shape: ask the backend to change an
// environment, rediscover what the environment now provides, then bring
// the bin directory and the metadata record in line with it. The bin
// directory is shared, so link changes go through links.Manager which
// refuses to delete wrappers that run in a different environment.
//
// Update is the delicate path. It snapshots the executables of every
// package before and after the backend call and only touches the wrappers
// that changed. When the backend fails the environment is removed and
// reinstalled from scratch, replaying its injected packages.
//
// All operations run sequentially; nothing here is safe to call
// concurrently against the same environment.
package core
