package core

import (
	"context"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
)

// Inject installs specs into an existing environment and records them as
// injected packages. Their apps are only exposed with includeApps.
func (c *Core) Inject(ctx context.Context, env string, specs []string, includeApps, force bool) error {
	done := logging.LogOperationStart(c.logger, "inject")
	defer done()

	if len(specs) == 0 {
		return errors.New(errors.ErrInvalidInput, "no package to inject")
	}
	prefix, err := c.requireInstalled(env)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, conda.PackageName(s))
	}

	before, err := c.store.Load(prefix)
	if err != nil {
		return err
	}

	if err := c.backend.InstallPackages(ctx, prefix, specs, c.channels); err != nil {
		return err
	}
	after, err := c.store.Inject(prefix, names, includeApps)
	if err != nil {
		return err
	}
	if err := c.unlinkHidden(prefix, before.Apps(), after.Apps()); err != nil {
		return err
	}
	if includeApps {
		if err := c.linkPackages(prefix, names, force); err != nil {
			return err
		}
	}

	c.logger.Info().Strs("packages", names).Msgf("Done injecting %s to `%s`", strings.Join(names, " and "), env)
	return nil
}

// unlinkHidden removes the wrappers of apps exposed before but not after a
// metadata change, such as re-injecting a package without its apps.
func (c *Core) unlinkHidden(prefix string, before, after []string) error {
	kept := make(map[string]bool, len(after))
	for _, a := range after {
		kept[a] = true
	}
	var hidden []string
	for _, a := range before {
		if !kept[a] {
			hidden = append(hidden, a)
		}
	}
	if len(hidden) == 0 {
		return nil
	}
	_, err := c.links.RemoveLinks(prefix, hidden)
	return err
}

// Uninject removes injected packages from an environment. Names that are
// not injected are reported and otherwise ignored; when none of the names
// is injected nothing is changed.
func (c *Core) Uninject(ctx context.Context, env string, names []string) error {
	done := logging.LogOperationStart(c.logger, "uninject")
	defer done()

	prefix, err := c.requireInstalled(env)
	if err != nil {
		return err
	}
	m, err := c.store.Load(prefix)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var found []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := m.Injected[name]; ok {
			found = append(found, name)
		} else {
			c.logger.Info().Str("package", name).Msgf("`%s` is absent in the `%s` environment", name, env)
		}
	}
	if len(found) == 0 {
		c.logger.Warn().Str("env", env).Msgf("No package is uninjected from `%s`", env)
		return nil
	}
	sort.Strings(found)

	if err := c.backend.UninstallPackages(ctx, prefix, found); err != nil {
		return err
	}

	var apps []string
	for _, name := range found {
		if p := m.Injected[name]; p.IncludeApps {
			apps = append(apps, p.Apps...)
		}
	}
	if _, err := c.links.RemoveLinks(prefix, apps); err != nil {
		return err
	}
	if _, err := c.store.Uninject(prefix, found); err != nil {
		return err
	}

	c.logger.Info().Strs("packages", found).Msgf("`%s` has been uninjected from `%s`", strings.Join(found, " and "), env)
	return nil
}
