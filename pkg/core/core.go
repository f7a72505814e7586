package core

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/links"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/metadata"
	"github.com/yamaton/condax/pkg/types"
)

// Options configures a Core.
type Options struct {
	FS      types.FS
	Backend conda.Backend
	Links   *links.Manager
	// PrefixDir holds one environment per installed package.
	PrefixDir string
	// Channels are passed to every backend call that resolves packages.
	Channels []string
	// EnvironmentsFile is conda's registry of known environments.
	EnvironmentsFile string
}

// Core runs condax operations against one prefix directory and bin directory.
type Core struct {
	fs        types.FS
	backend   conda.Backend
	links     *links.Manager
	store     *metadata.Store
	prefixDir string
	channels  []string
	envsFile  string
	logger    zerolog.Logger
}

// New returns a Core.
func New(opts Options) *Core {
	return &Core{
		fs:        opts.FS,
		backend:   opts.Backend,
		links:     opts.Links,
		store:     metadata.NewStore(opts.FS),
		prefixDir: opts.PrefixDir,
		channels:  opts.Channels,
		envsFile:  opts.EnvironmentsFile,
		logger:    logging.GetLogger("core"),
	}
}

// Prefix is the environment prefix for a package name.
func (c *Core) Prefix(name string) string {
	return filepath.Join(c.prefixDir, name)
}

// Store exposes the metadata store the core writes through.
func (c *Core) Store() *metadata.Store { return c.store }

func (c *Core) isEnv(name string) bool {
	return envinfo.IsEnv(c.fs, c.Prefix(name))
}

func (c *Core) requireInstalled(name string) (string, error) {
	prefix := c.Prefix(name)
	if !envinfo.IsEnv(c.fs, prefix) {
		return "", errors.Newf(errors.ErrPackageNotInstalled, "package `%s` is not installed with condax", name).
			WithDetail("prefix", prefix)
	}
	return prefix, nil
}

// Environments returns the names of every environment in the prefix
// directory, sorted.
func (c *Core) Environments() ([]string, error) {
	prefixes, err := envinfo.FindEnvs(c.fs, c.prefixDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		names = append(names, filepath.Base(p))
	}
	return names, nil
}

// checkInstallTarget enforces the preconditions shared by the install
// paths. An existing environment is removed when force is set.
func (c *Core) checkInstallTarget(name string, force bool, remove func() error) error {
	prefix := c.Prefix(name)
	if envinfo.IsEnv(c.fs, prefix) {
		if !force {
			return errors.Newf(errors.ErrPackageInstalled,
				"package `%s` is already installed. Use `--force` to force install", name).
				WithDetail("prefix", prefix)
		}
		c.logger.Warn().Str("package", name).Msg("Overwriting environment")
		return remove()
	}

	info, err := c.fs.Stat(prefix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", prefix)
	}
	if !info.IsDir() {
		return notAnEnv(prefix)
	}
	entries, err := c.fs.ReadDir(prefix)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", prefix)
	}
	if len(entries) > 0 {
		return notAnEnv(prefix)
	}
	return nil
}

func notAnEnv(prefix string) error {
	return errors.Newf(errors.ErrNotAnEnv, "%s is not a conda environment. Cannot install to this location", prefix).
		WithDetail("prefix", prefix)
}

// exesToLink lists the executables exposed for an environment: the main
// package's plus those of injected packages recorded with IncludeApps.
func (c *Core) exesToLink(prefix string, m *metadata.Metadata) ([]string, error) {
	exes, err := envinfo.FindExes(c.fs, prefix, m.Main.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range m.InjectedPackages() {
		if !p.IncludeApps {
			continue
		}
		found, err := envinfo.FindExes(c.fs, prefix, p.Name)
		if err != nil {
			return nil, err
		}
		exes = append(exes, found...)
	}
	sort.Strings(exes)
	return exes, nil
}
