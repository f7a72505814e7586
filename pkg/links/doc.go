// Package links manages the wrapper scripts condax publishes in the bin
// directory.
//
// The bin directory is shared with the user and other tools, so the manager
// holds no state of its own: every decision is made from what is on disk.
// A wrapper is only removed after parsing it confirms it still runs in the
// environment the caller believes owns it. Creating over an existing name
// either requires force or an explicit yes from the Confirmer.
package links
