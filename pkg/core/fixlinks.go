package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/links"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/metadata"
)

// FixLinksResult reports what FixLinks repaired.
type FixLinksResult struct {
	Pruned     links.PruneResult
	Relinked   []string
	Registered []string
}

// FixLinks repairs the bin directory: stale and dangling entries are pruned,
// every environment's wrappers are rewritten, and every environment is
// registered in conda's environments file.
func (c *Core) FixLinks() (*FixLinksResult, error) {
	done := logging.LogOperationStart(c.logger, "fix-links")
	defer done()

	res := &FixLinksResult{}
	if err := c.links.EnsureBinDir(); err != nil {
		return nil, err
	}

	envs, err := c.Environments()
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*metadata.Metadata, len(envs))
	for _, name := range envs {
		m, err := c.store.Load(c.Prefix(name))
		if err != nil {
			return nil, err
		}
		owners[filepath.Clean(c.Prefix(name))] = m
	}

	res.Pruned, err = c.links.Prune(func(prefix, app string) bool {
		m, ok := owners[prefix]
		return ok && m.Owns(app)
	})
	if err != nil {
		return nil, err
	}

	for _, name := range envs {
		linked, err := c.recreateLinks(name)
		if err != nil {
			return nil, err
		}
		res.Relinked = append(res.Relinked, linked...)
	}
	sort.Strings(res.Relinked)

	res.Registered, err = c.registerEnvironments(envs)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// recreateLinks force-writes every wrapper an environment should expose.
func (c *Core) recreateLinks(name string) ([]string, error) {
	prefix := c.Prefix(name)
	m, err := c.store.Load(prefix)
	if err != nil {
		return nil, err
	}
	exes, err := c.exesToLink(prefix, m)
	if err != nil {
		return nil, err
	}
	return c.links.CreateLinks(prefix, exes, true)
}

// registerEnvironments appends the prefixes missing from conda's
// environments file and returns them.
func (c *Core) registerEnvironments(envs []string) ([]string, error) {
	if c.envsFile == "" || len(envs) == 0 {
		return nil, nil
	}

	content, err := c.fs.ReadFile(c.envsFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", c.envsFile)
	}
	known := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		known[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, name := range envs {
		if p := c.Prefix(name); !known[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	sort.Strings(missing)

	if err := c.fs.MkdirAll(filepath.Dir(c.envsFile), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(c.envsFile))
	}
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		content = append(content, '\n')
	}
	content = append(content, strings.Join(missing, "\n")+"\n"...)
	if err := c.fs.WriteFile(c.envsFile, content, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", c.envsFile)
	}
	c.logger.Info().Strs("prefixes", missing).Msg("Registered environments with conda")
	return missing, nil
}
