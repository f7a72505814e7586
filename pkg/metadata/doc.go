// Package metadata persists, per environment, which packages condax put
// there and which app names each of them owns.
//
// The record lives in condax_metadata.json at the root of the environment
// prefix. It is written with sorted keys and four-space indentation so two
// records can be compared textually. Encode and Decode convert between the
// typed Metadata and the plain map that is serialized; Decode validates
// every field and fails with BAD_METADATA rather than guessing.
//
// Store adds the filesystem side. TryLoad reports a missing file as nil;
// Load recovers from that case by rebuilding the record from the package
// manifests, which is the only implicit recovery path.
package metadata
