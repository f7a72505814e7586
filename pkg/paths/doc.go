// Package paths provides centralized path handling for condax.
//
// Directories follow the XDG Base Directory specification:
//
//   - Data: $XDG_DATA_HOME/condax (environments and downloaded backends)
//   - Config: $XDG_CONFIG_HOME/condax (config.yaml)
//   - State: $XDG_STATE_HOME/condax (log file)
//
// Wrappers are published to ~/.local/bin unless configured otherwise.
//
// # Environment Variables
//
//   - CONDAX_DATA_DIR: Override the data directory
//   - CONDAX_CONFIG_DIR: Override the config directory
//
// The prefix and bin directories are user-configurable and are therefore
// resolved by pkg/config; New only expands and absolutizes what it is given.
package paths
