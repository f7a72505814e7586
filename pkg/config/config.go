package config

import (
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/yamaton/condax/pkg/errors"
)

// DefaultChannel is used when neither the config file nor the environment
// names any channel.
const DefaultChannel = "conda-forge"

// Config is the effective condax configuration.
type Config struct {
	PrefixDir            string   `koanf:"prefix_dir" yaml:"prefix_dir" toml:"prefix_dir"`
	BinDir               string   `koanf:"bin_dir" yaml:"bin_dir" toml:"bin_dir"`
	Channels             []string `koanf:"channels" yaml:"channels" toml:"channels"`
	HideExitCode         bool     `koanf:"hide_exitcode" yaml:"hide_exitcode" toml:"hide_exitcode"`
	CondaExecutable      string   `koanf:"conda_executable" yaml:"conda_executable,omitempty" toml:"conda_executable,omitempty"`
	MicromambaExecutable string   `koanf:"micromamba_executable" yaml:"micromamba_executable,omitempty" toml:"micromamba_executable,omitempty"`

	// Source is the config file that was loaded, empty when none was found.
	Source string `koanf:"-" yaml:"-" toml:"-"`
}

// WithChannels returns a copy whose channel list starts with extra, followed
// by the configured channels not already named.
func (c Config) WithChannels(extra []string) Config {
	if len(extra) == 0 {
		return c
	}
	seen := make(map[string]bool, len(extra)+len(c.Channels))
	merged := make([]string, 0, len(extra)+len(c.Channels))
	for _, ch := range append(append([]string(nil), extra...), c.Channels...) {
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		merged = append(merged, ch)
	}
	c.Channels = merged
	return c
}

// Dump renders the configuration as yaml or toml.
func (c Config) Dump(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as yaml")
		}
		return out, nil
	case "toml":
		out, err := toml.Marshal(c)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as toml")
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown config format %q (want yaml or toml)", format)
	}
}

var falseSpellings = map[string]bool{
	"false": true,
	"no":    true,
	"off":   true,
	"n":     true,
	"f":     true,
}

// ToBool interprets v with condax's truthy rule: a bool is itself, an integer
// string is true when non-zero, and any other non-empty string is true unless
// it spells false (false, no, off, n, f; case-insensitive).
func ToBool(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n != 0
		}
		return !falseSpellings[strings.ToLower(s)]
	default:
		return false
	}
}
