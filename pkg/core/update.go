package core

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/metadata"
)

// VersionChange classifies how the main package version moved.
type VersionChange string

const (
	VersionUnchanged  VersionChange = "unchanged"
	VersionUpgraded   VersionChange = "upgraded"
	VersionDowngraded VersionChange = "downgraded"
	// VersionChanged is used when either side is not a semantic version.
	VersionChanged VersionChange = "changed"
)

// ClassifyVersion compares two package versions.
func ClassifyVersion(before, after string) VersionChange {
	if before == after {
		return VersionUnchanged
	}
	b, errB := semver.NewVersion(before)
	a, errA := semver.NewVersion(after)
	if errB != nil || errA != nil {
		return VersionChanged
	}
	switch a.Compare(b) {
	case 1:
		return VersionUpgraded
	case -1:
		return VersionDowngraded
	default:
		return VersionUnchanged
	}
}

// UpdateResult describes what Update did to one environment.
type UpdateResult struct {
	Env string
	// Recreated is set when the backend update failed and the environment
	// was rebuilt from scratch.
	Recreated bool
	Created   []string
	Removed   []string
	Before    string
	After     string
	Change    VersionChange
}

// snapshot maps each package name to its discovered executables.
type snapshot map[string][]string

func (c *Core) snapshot(prefix string, m *metadata.Metadata) (snapshot, error) {
	snap := make(snapshot)
	main, err := envinfo.FindExes(c.fs, prefix, m.Main.Name)
	if err != nil {
		return nil, err
	}
	snap[m.Main.Name] = main
	for _, name := range m.InjectedNames() {
		exes, err := envinfo.FindExes(c.fs, prefix, name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNoPackageMetadata) {
				c.logger.Warn().Str("package", name).Msg("Injected package no longer present")
				snap[name] = nil
				continue
			}
			return nil, err
		}
		snap[name] = exes
	}
	return snap, nil
}

// difference returns the entries of a missing from b, sorted.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, x := range b {
		in[x] = true
	}
	var out []string
	for _, x := range a {
		if !in[x] {
			out = append(out, x)
		}
	}
	sort.Strings(out)
	return out
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

// Update updates an environment's main package in place and applies the
// resulting wrapper changes. If the backend fails the environment is
// removed and reinstalled from spec with its injected packages replayed.
// Either way the metadata record is rewritten from what is on disk.
func (c *Core) Update(ctx context.Context, spec string, updateSpecs, force bool) (*UpdateResult, error) {
	done := logging.LogOperationStart(c.logger, "update")
	defer done()

	name := conda.PackageName(spec)
	prefix, err := c.requireInstalled(name)
	if err != nil {
		return nil, err
	}
	m, err := c.store.Load(prefix)
	if err != nil {
		return nil, err
	}
	injected := m.InjectedPackages()

	res := &UpdateResult{Env: name, Before: c.mainVersion(prefix, name)}

	before, err := c.snapshot(prefix, m)
	if err != nil {
		return nil, err
	}

	if err := c.backend.UpdateEnv(ctx, prefix, spec, updateSpecs, c.channels); err != nil {
		if !errors.IsErrorCode(err, errors.ErrBackendCommand) {
			return nil, err
		}
		c.logger.Error().Err(err).Str("env", name).Msgf("Failed to update `%s`", name)
		c.logger.Warn().Str("env", name).Msg("Recreating the environment...")
		if err := c.recreate(ctx, prefix, name, spec, injected, force); err != nil {
			return nil, err
		}
		res.Recreated = true
	} else {
		after, err := c.snapshot(prefix, m)
		if err != nil {
			return nil, err
		}
		if err := c.applyDelta(prefix, m, before, after, force, res); err != nil {
			return nil, err
		}
		c.logger.Info().Str("env", name).Msgf("%s update successfully", name)
	}

	if err := c.rewriteMetadata(prefix, name, injected); err != nil {
		return nil, err
	}

	res.After = c.mainVersion(prefix, name)
	res.Change = ClassifyVersion(res.Before, res.After)
	c.logger.Info().
		Str("env", name).
		Str("from", res.Before).
		Str("to", res.After).
		Str("change", string(res.Change)).
		Msg("Main package version")
	return res, nil
}

// applyDelta removes wrappers for executables that disappeared and creates
// wrappers for new ones. Injected packages only take part when their apps
// are exposed. All removals run before any creation so an app moving
// between packages of the same environment ends up linked.
func (c *Core) applyDelta(prefix string, m *metadata.Metadata, before, after snapshot, force bool, res *UpdateResult) error {
	unchanged := true
	var toCreate, toRemove []string
	packages := append([]string{m.Main.Name}, m.InjectedNames()...)
	for _, pkg := range packages {
		created := difference(after[pkg], before[pkg])
		removed := difference(before[pkg], after[pkg])
		if len(created) > 0 || len(removed) > 0 {
			unchanged = false
		}
		if pkg != m.Main.Name && !m.Injected[pkg].IncludeApps {
			continue
		}
		toCreate = append(toCreate, created...)
		toRemove = append(toRemove, removed...)
	}
	if unchanged {
		c.logger.Info().Str("env", m.Main.Name).Msgf("No updates found: %s", m.Main.Name)
		return nil
	}

	removed, err := c.links.RemoveLinks(prefix, baseNames(toRemove))
	if err != nil {
		return err
	}
	res.Removed = append(res.Removed, removed.Removed...)

	created, err := c.links.CreateLinks(prefix, toCreate, force)
	if err != nil {
		return err
	}
	res.Created = append(res.Created, created...)

	sort.Strings(res.Created)
	sort.Strings(res.Removed)
	return nil
}

// recreate rebuilds an environment after a failed update.
func (c *Core) recreate(ctx context.Context, prefix, name, spec string, injected []metadata.Package, force bool) error {
	if err := c.destroy(ctx, prefix, false); err != nil {
		return err
	}
	if err := c.backend.CreateEnv(ctx, prefix, spec, c.channels); err != nil {
		return err
	}
	if err := c.linkAndRecord(prefix, name, force); err != nil {
		return err
	}
	if len(injected) == 0 {
		return nil
	}

	names := make([]string, 0, len(injected))
	var exposed []string
	for _, p := range injected {
		names = append(names, p.Name)
		if p.IncludeApps {
			exposed = append(exposed, p.Name)
		}
	}
	if err := c.backend.InstallPackages(ctx, prefix, names, c.channels); err != nil {
		return err
	}
	return c.linkPackages(prefix, exposed, force)
}

// rewriteMetadata writes a fresh record for the environment, keeping each
// injected package's IncludeApps flag.
func (c *Core) rewriteMetadata(prefix, name string, injected []metadata.Package) error {
	m, err := c.store.Create(prefix, name, nil)
	if err != nil {
		return err
	}
	for _, p := range injected {
		exes, err := envinfo.FindExes(c.fs, prefix, p.Name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNoPackageMetadata) {
				c.logger.Warn().Str("package", p.Name).Msg("Dropping injected package missing from the environment")
				continue
			}
			return err
		}
		m.Inject(metadata.NewInjected(p.Name, baseNames(exes), p.IncludeApps))
	}
	return c.store.Save(m)
}

func (c *Core) mainVersion(prefix, name string) string {
	rec, err := envinfo.ReadPackage(c.fs, prefix, name)
	if err != nil {
		return ""
	}
	return rec.Version
}

// UpdateAll updates every environment in turn. A failure is logged and the
// loop moves on to the next environment.
func (c *Core) UpdateAll(ctx context.Context, updateSpecs, force bool) ([]*UpdateResult, error) {
	envs, err := c.Environments()
	if err != nil {
		return nil, err
	}
	var results []*UpdateResult
	for _, env := range envs {
		res, err := c.Update(ctx, env, updateSpecs, force)
		if err != nil {
			c.logger.Error().Err(err).Str("env", env).Msgf("Failed to update `%s`", env)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
