package links

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/wrapper"
)

// PruneResult lists what Prune deleted.
type PruneResult struct {
	Dangling []string
	Stale    []string
}

// OwnsFunc reports whether the environment at prefix exposes app.
type OwnsFunc func(prefix, app string) bool

// Prune cleans the bin directory. Symlinks whose target is gone are
// removed. Wrappers created by condax are removed unless owns says the
// environment they run in still exposes their app. A nil owns keeps no
// wrapper.
func (m *Manager) Prune(owns OwnsFunc) (PruneResult, error) {
	var res PruneResult

	entries, err := m.fs.ReadDir(m.binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", m.binDir)
	}

	b := newBatch()
	var dangling, stale []string
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(m.binDir, name)

		if m.isDangling(path) {
			b.remove(path)
			m.logger.Info().Str("path", path).Msg("Removing dangling link")
			dangling = append(dangling, name)
			continue
		}

		info, err := m.fs.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		content, err := m.fs.ReadFile(path)
		if err != nil || !strings.Contains(string(content), wrapper.Marker) {
			continue
		}
		inv, ok := wrapper.Parse(content)
		if !ok {
			m.logger.Info().Str("path", path).Msg("Failed to read environment from wrapper")
			continue
		}

		app := name
		if m.platform == wrapper.Windows {
			app = wrapper.BodyName(name)
		}
		if owns != nil && owns(filepath.Clean(inv.Prefix), app) {
			continue
		}

		b.remove(path)
		m.logger.Info().Str("path", path).Str("prefix", inv.Prefix).Msg("Removing stale wrapper")
		stale = append(stale, name)
	}

	if err := m.apply(b); err != nil {
		return res, err
	}

	sort.Strings(dangling)
	sort.Strings(stale)
	res.Dangling, res.Stale = dangling, stale
	return res, nil
}

// isDangling reports whether path is a symlink whose target does not exist.
func (m *Manager) isDangling(path string) bool {
	info, err := m.fs.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	dest, err := m.fs.Readlink(path)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(path), dest)
	}
	_, err = m.fs.Stat(dest)
	return os.IsNotExist(err)
}
