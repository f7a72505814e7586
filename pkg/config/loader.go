package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/paths"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "CONDAX_"

var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// Load builds the effective configuration. configFile may be empty, in which
// case the default locations are searched and a missing file is not an error.
func Load(configFile string) (Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	// 2. Config file
	path, err := resolveConfigFile(configFile)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Env vars
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToTruthyBoolHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Source = path
	postProcess(&cfg)
	return cfg, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"prefix_dir":    paths.DefaultPrefixDir(),
		"bin_dir":       paths.DefaultBinDir(),
		"channels":      []string{DefaultChannel},
		"hide_exitcode": false,
	}
}

func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		explicit = paths.ExpandHome(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", explicit)
		}
		return explicit, nil
	}

	dir := paths.DefaultConfigDir()
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}

// stringToTruthyBoolHookFunc applies ToBool to strings decoded into bools so
// that CONDAX_HIDE_EXITCODE=yes behaves like the other truthy spellings.
func stringToTruthyBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() == reflect.String && t.Kind() == reflect.Bool {
			return ToBool(data), nil
		}
		return data, nil
	}
}

func postProcess(cfg *Config) {
	cfg.PrefixDir = paths.ExpandHome(cfg.PrefixDir)
	cfg.BinDir = paths.ExpandHome(cfg.BinDir)
	cfg.CondaExecutable = paths.ExpandHome(cfg.CondaExecutable)
	cfg.MicromambaExecutable = paths.ExpandHome(cfg.MicromambaExecutable)

	channels := make([]string, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, c)
		}
	}
	cfg.Channels = channels
}
