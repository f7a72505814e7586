package core

import (
	"context"
	"path/filepath"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
)

// Install creates an environment for spec and exposes the main package's
// executables. With force an existing environment is replaced and existing
// wrappers are overwritten without asking.
func (c *Core) Install(ctx context.Context, spec string, force bool) error {
	done := logging.LogOperationStart(c.logger, "install")
	defer done()

	name := conda.PackageName(spec)
	prefix := c.Prefix(name)

	if err := c.checkInstallTarget(name, force, func() error {
		return c.destroy(ctx, prefix, false)
	}); err != nil {
		return err
	}

	if err := c.backend.CreateEnv(ctx, prefix, spec, c.channels); err != nil {
		return err
	}
	if err := c.linkAndRecord(prefix, name, force); err != nil {
		return err
	}

	c.logger.Info().Str("package", name).Msgf("`%s` has been installed by condax", name)
	return nil
}

// linkAndRecord exposes the main package of a freshly created environment
// and writes its metadata record.
func (c *Core) linkAndRecord(prefix, name string, force bool) error {
	exes, err := envinfo.FindExes(c.fs, prefix, name)
	if err != nil {
		return err
	}
	if _, err := c.links.CreateLinks(prefix, exes, force); err != nil {
		return err
	}
	_, err = c.store.Create(prefix, name, exes)
	return err
}

// InstallFromEnvFile creates an environment from a conda environment file.
// The first package names the environment; the remaining packages are
// recorded as injected with their apps exposed. Every package must be listed
// in the file's dependencies.
func (c *Core) InstallFromEnvFile(ctx context.Context, file string, packages []string, force bool) error {
	done := logging.LogOperationStart(c.logger, "install-env-file")
	defer done()

	if len(packages) == 0 {
		return errors.New(errors.ErrInvalidInput, "at least one package must be named")
	}

	envFile, err := conda.ReadEnvFile(c.fs, file)
	if err != nil {
		return err
	}
	listed := make(map[string]bool)
	for _, name := range envFile.PackageNames() {
		listed[name] = true
	}
	for _, p := range packages {
		if !listed[p] {
			return errors.Newf(errors.ErrPackageMissingInEnvFile,
				"package `%s` is missing in the provided environment file. Specify package(s) in the `dependencies`", p).
				WithDetail("file", file)
		}
	}

	name := packages[0]
	prefix := c.Prefix(name)
	if err := c.checkInstallTarget(name, force, func() error {
		return c.destroy(ctx, prefix, false)
	}); err != nil {
		return err
	}

	if err := c.backend.ImportEnv(ctx, prefix, file, force); err != nil {
		return err
	}
	if err := c.linkAndRecord(prefix, name, force); err != nil {
		return err
	}

	injected := packages[1:]
	if len(injected) > 0 {
		if _, err := c.store.Inject(prefix, injected, true); err != nil {
			return err
		}
		if err := c.linkPackages(prefix, injected, force); err != nil {
			return err
		}
	}

	c.logger.Info().
		Str("package", name).
		Msgf("Dependencies in %s have been installed as the package `%s`", filepath.Base(file), name)
	return nil
}

// linkPackages exposes the executables of each package in names.
func (c *Core) linkPackages(prefix string, names []string, force bool) error {
	for _, pkg := range names {
		exes, err := envinfo.FindExes(c.fs, prefix, pkg)
		if err != nil {
			return err
		}
		if _, err := c.links.CreateLinks(prefix, exes, force); err != nil {
			return err
		}
	}
	return nil
}

// Remove unlinks an environment's apps and destroys it. An environment
// condax does not know about is left alone with a warning.
func (c *Core) Remove(ctx context.Context, name string) error {
	done := logging.LogOperationStart(c.logger, "remove")
	defer done()

	if !c.isEnv(name) {
		c.logger.Warn().Str("package", name).Msgf("`%s` is not installed with condax", name)
		return nil
	}
	if err := c.destroy(ctx, c.Prefix(name), true); err != nil {
		return err
	}
	c.logger.Info().Str("package", name).Msgf("`%s` has been removed from condax", name)
	return nil
}

// destroy removes the wrappers an environment owns, then the environment.
// When strict is false an unreadable metadata record only skips the unlink
// step, which is what replacing an environment needs.
func (c *Core) destroy(ctx context.Context, prefix string, strict bool) error {
	m, err := c.store.Load(prefix)
	switch {
	case err == nil:
		if _, err := c.links.RemoveLinks(prefix, m.Apps()); err != nil {
			return err
		}
	case strict:
		return err
	default:
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("Could not read metadata; leaving wrappers for fix-links")
	}
	return c.backend.RemoveEnv(ctx, prefix)
}
