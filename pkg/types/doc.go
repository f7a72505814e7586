// Package types defines the small set of interfaces shared across condax
// packages. The filesystem abstraction lives here so that the link manager,
// the metadata store and environment discovery can all be handed the same
// implementation.
package types
