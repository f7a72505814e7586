package core

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/metadata"
)

// cleanEvery is how many imported environments trigger a package cache clean.
const cleanEvery = 10

// Export writes <env>.yml and <env>.json for every environment into dir.
func (c *Core) Export(ctx context.Context, dir string) ([]string, error) {
	done := logging.LogOperationStart(c.logger, "export")
	defer done()

	if err := c.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	envs, err := c.Environments()
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("dir", dir).Msg("Started exporting all environments")

	for _, name := range envs {
		prefix := c.Prefix(name)
		if err := c.backend.ExportEnv(ctx, prefix, filepath.Join(dir, name+".yml")); err != nil {
			return nil, err
		}
		m, err := c.store.Load(prefix)
		if err != nil {
			return nil, err
		}
		data, err := m.ToJSON()
		if err != nil {
			return nil, err
		}
		out := filepath.Join(dir, name+".json")
		if err := c.fs.WriteFile(out, append(data, '\n'), 0644); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", out)
		}
	}
	return envs, nil
}

// Import recreates every environment exported into dir. Existing
// environments are skipped unless force is set, in which case they are
// removed first.
func (c *Core) Import(ctx context.Context, dir string, force bool) ([]string, error) {
	done := logging.LogOperationStart(c.logger, "import")
	defer done()

	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yml" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	c.logger.Info().Str("dir", dir).Int("count", len(files)).Msg("Started importing environments")

	var imported []string
	for i, file := range files {
		name := strings.TrimSuffix(file, ".yml")
		prefix := c.Prefix(name)

		if c.isEnv(name) {
			if !force {
				c.logger.Info().Str("env", name).Msgf("Environment %s already exists. Skipping...", name)
				continue
			}
			if err := c.destroy(ctx, prefix, false); err != nil {
				return imported, err
			}
		}

		if err := c.backend.ImportEnv(ctx, prefix, filepath.Join(dir, file), force); err != nil {
			return imported, err
		}
		if (i+1)%cleanEvery == 0 {
			c.logger.Info().Msg("Cleaning up...")
			if err := c.backend.Clean(ctx); err != nil {
				return imported, err
			}
		}

		if err := c.restoreMetadata(prefix, filepath.Join(dir, name+".json")); err != nil {
			return imported, err
		}
		if _, err := c.recreateLinks(name); err != nil {
			return imported, err
		}
		imported = append(imported, name)
	}
	return imported, nil
}

// restoreMetadata installs an exported metadata record into prefix, keeping
// any record already there as a .bak file. The main package's prefix is
// rewritten to the local one. Without an exported record the metadata is
// rebuilt from the package manifests on first load.
func (c *Core) restoreMetadata(prefix, exported string) error {
	data, err := c.fs.ReadFile(exported)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn().Str("file", exported).Msg("No exported metadata; it will be rebuilt")
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", exported)
	}
	m, err := metadata.FromJSON(data)
	if err != nil {
		return err
	}
	m.Main.Prefix = prefix

	current := metadata.Path(prefix)
	if _, err := c.fs.Stat(current); err == nil {
		backup := strings.TrimSuffix(current, filepath.Ext(current)) + ".bak"
		if err := c.fs.Rename(current, backup); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to back up %s", current)
		}
	}
	return c.store.Save(m)
}
