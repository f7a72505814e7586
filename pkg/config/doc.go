// Package config resolves the condax configuration once at start-up.
//
// Values are layered with koanf, later layers overriding earlier ones:
//
//  1. Built-in defaults derived from pkg/paths
//  2. The config file (--config, else $XDG_CONFIG_HOME/condax/config.yaml,
//     config.yml or config.toml)
//  3. CONDAX_* environment variables
//
// The result is an immutable Config value. Callers pass it explicitly to the
// packages that need it; nothing in condax reads configuration from globals.
package config
