package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/yamaton/condax/pkg/errors"
)

// Environment variable names
const (
	// EnvCondaxDataDir overrides the XDG data directory for condax
	EnvCondaxDataDir = "CONDAX_DATA_DIR"

	// EnvCondaxConfigDir overrides the XDG config directory for condax
	EnvCondaxConfigDir = "CONDAX_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the condax directories.
const (
	// CondaxDirName is the directory name for condax-specific files
	CondaxDirName = "condax"

	// EnvsDir is the default subdirectory of the data dir holding environments
	EnvsDir = "envs"

	// BackendBinsDir holds conda/micromamba executables downloaded by condax
	BackendBinsDir = "bins"

	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"

	// LogFileName is the name of the log file
	LogFileName = "condax.log"
)

// Paths resolves the directories condax reads and writes.
type Paths struct {
	prefixDir string
	binDir    string
	dataDir   string
	configDir string
	stateDir  string
}

// New builds Paths. Empty prefixDir or binDir fall back to the defaults.
func New(prefixDir, binDir string) (*Paths, error) {
	p := &Paths{
		dataDir:   DefaultDataDir(),
		configDir: DefaultConfigDir(),
		stateDir:  filepath.Join(xdg.StateHome, CondaxDirName),
	}

	if prefixDir == "" {
		prefixDir = DefaultPrefixDir()
	}
	if binDir == "" {
		binDir = DefaultBinDir()
	}

	var err error
	if p.prefixDir, err = filepath.Abs(ExpandHome(prefixDir)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve prefix dir %s", prefixDir)
	}
	if p.binDir, err = filepath.Abs(ExpandHome(binDir)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve bin dir %s", binDir)
	}

	return p, nil
}

// DefaultDataDir is $XDG_DATA_HOME/condax unless CONDAX_DATA_DIR is set.
func DefaultDataDir() string {
	if dataDir := os.Getenv(EnvCondaxDataDir); dataDir != "" {
		return ExpandHome(dataDir)
	}
	return filepath.Join(xdg.DataHome, CondaxDirName)
}

// DefaultConfigDir is $XDG_CONFIG_HOME/condax unless CONDAX_CONFIG_DIR is set.
func DefaultConfigDir() string {
	if configDir := os.Getenv(EnvCondaxConfigDir); configDir != "" {
		return ExpandHome(configDir)
	}
	return filepath.Join(xdg.ConfigHome, CondaxDirName)
}

// DefaultPrefixDir is <data dir>/envs.
func DefaultPrefixDir() string {
	return filepath.Join(DefaultDataDir(), EnvsDir)
}

// DefaultBinDir is ~/.local/bin.
func DefaultBinDir() string {
	return filepath.Join(homeDir(), ".local", "bin")
}

// DefaultConfigFile is <config dir>/config.yaml.
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigDir(), ConfigFileName)
}

func (p *Paths) PrefixDir() string { return p.prefixDir }
func (p *Paths) BinDir() string    { return p.binDir }
func (p *Paths) DataDir() string   { return p.dataDir }
func (p *Paths) ConfigDir() string { return p.configDir }
func (p *Paths) StateDir() string  { return p.stateDir }

// EnvPrefix is the environment prefix for an application package.
func (p *Paths) EnvPrefix(name string) string {
	return filepath.Join(p.prefixDir, name)
}

// CondaBinsDir is where downloaded conda/micromamba executables are kept.
func (p *Paths) CondaBinsDir() string {
	return filepath.Join(p.dataDir, BackendBinsDir)
}

// LogFilePath returns the path to the condax log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// CondaEnvironmentsFile is conda's registry of known environments.
func (p *Paths) CondaEnvironmentsFile() string {
	return filepath.Join(homeDir(), ".conda", "environments.txt")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv(EnvHome)
	}
	return home
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	home := homeDir()
	if home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}

	// ~user is not supported
	return path
}
