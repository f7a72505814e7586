package links

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/types"
	"github.com/yamaton/condax/pkg/ui/confirmations"
	"github.com/yamaton/condax/pkg/wrapper"
)

// RunnerFunc resolves the executable wrappers hand off to. It is only
// called when a wrapper is actually written.
type RunnerFunc func() (string, error)

// Options configures a Manager. FS serves reads; writes and deletions in
// the bin directory go through synthfs.
type Options struct {
	FS           types.FS
	BinDir       string
	Platform     wrapper.Platform
	Runner       RunnerFunc
	HideExitCode bool
	Confirmer    confirmations.Confirmer
}

// Manager creates, removes and prunes wrappers in one bin directory.
type Manager struct {
	fs           types.FS
	binFS        filesystem.FullFileSystem
	binDir       string
	platform     wrapper.Platform
	runner       RunnerFunc
	hideExitCode bool
	confirmer    confirmations.Confirmer
	logger       zerolog.Logger

	runnerPath string
}

// New returns a Manager. A nil Confirmer declines every overwrite.
func New(opts Options) *Manager {
	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = confirmations.Always(false)
	}
	return &Manager{
		fs:           opts.FS,
		binFS:        binFS(opts.BinDir),
		binDir:       opts.BinDir,
		platform:     opts.Platform,
		runner:       opts.Runner,
		hideExitCode: opts.HideExitCode,
		confirmer:    confirmer,
		logger:       logging.GetLogger("links"),
	}
}

// BinDir is the directory wrappers are written to.
func (m *Manager) BinDir() string { return m.binDir }

// WrapperPath is where the wrapper for app lives.
func (m *Manager) WrapperPath(app string) string {
	return filepath.Join(m.binDir, wrapper.Name(app, m.platform))
}

// OverwriteDecision decides whether a wrapper may be written. answer is the
// user's reply and only matters when the wrapper exists and force is off.
func OverwriteDecision(exists, force, answer bool) bool {
	if !exists || force {
		return true
	}
	return answer
}

func (m *Manager) resolveRunner() (string, error) {
	if m.runnerPath != "" {
		return m.runnerPath, nil
	}
	if m.runner == nil {
		return "", errors.New(errors.ErrBackendNotFound, "no runner configured for wrappers")
	}
	path, err := m.runner()
	if err != nil {
		return "", err
	}
	m.runnerPath = path
	return path, nil
}

// EnsureBinDir creates the bin directory if needed.
func (m *Manager) EnsureBinDir() error {
	if err := m.fs.MkdirAll(m.binDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", m.binDir)
	}
	return nil
}

// CreateLink writes the wrapper running exe inside prefix. It reports
// whether a wrapper was written; declining an overwrite is not an error.
func (m *Manager) CreateLink(prefix, exe string, force bool) (bool, error) {
	app := filepath.Base(exe)
	path := m.WrapperPath(app)

	_, statErr := m.fs.Lstat(path)
	exists := statErr == nil

	answer := false
	if exists && !force {
		var err error
		answer, err = m.confirmer.Confirm("`" + app + "` already exists. Overwrite?")
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrInternal, "failed to confirm overwrite of %s", app)
		}
	}
	if !OverwriteDecision(exists, force, answer) {
		m.logger.Warn().Str("app", app).Msg("Skipped creating entrypoint")
		return false, nil
	}

	runner, err := m.resolveRunner()
	if err != nil {
		return false, err
	}

	perm := os.FileMode(0755)
	if info, err := m.fs.Stat(exe); err == nil {
		perm = info.Mode().Perm()
	}

	if exists {
		m.logger.Warn().Str("app", app).Msg("Overwriting entrypoint")
	}

	b := newBatch()
	b.write(m, path, wrapper.Render(m.platform, runner, prefix, exe, m.hideExitCode), perm)
	if err := m.apply(b); err != nil {
		return false, err
	}
	return true, nil
}

// CreateLinks applies CreateLink to exes in sorted order and returns the app
// names actually written.
func (m *Manager) CreateLinks(prefix string, exes []string, force bool) ([]string, error) {
	if len(exes) == 0 {
		return nil, nil
	}
	if err := m.EnsureBinDir(); err != nil {
		return nil, err
	}

	sorted := append([]string(nil), exes...)
	sort.Strings(sorted)

	var linked []string
	for _, exe := range sorted {
		ok, err := m.CreateLink(prefix, exe, force)
		if err != nil {
			return linked, err
		}
		if ok {
			linked = append(linked, filepath.Base(exe))
		}
	}
	m.logger.Info().Strs("apps", linked).Msg("Created entrypoint links")
	return linked, nil
}

// RemoveResult reports what RemoveLinks did per app name.
type RemoveResult struct {
	// Removed lists every wrapper deleted, including Unknown ones.
	Removed []string
	// Unknown lists wrappers deleted although their target could not be parsed.
	Unknown []string
	// Skipped lists wrappers left in place because another prefix owns them.
	Skipped []string
}

// RemoveLinks deletes the wrappers for apps that still run inside prefix.
// Missing wrappers are ignored.
func (m *Manager) RemoveLinks(prefix string, apps []string) (RemoveResult, error) {
	var res RemoveResult
	want := filepath.Clean(prefix)

	sorted := append([]string(nil), apps...)
	sort.Strings(sorted)

	b := newBatch()
	var removed, unknown []string
	for _, app := range sorted {
		path := m.WrapperPath(app)
		if _, err := m.fs.Lstat(path); err != nil {
			continue
		}

		owner, ok := wrapper.ReadPrefix(m.fs, path)
		switch {
		case !ok:
			unknown = append(unknown, app)
		case filepath.Clean(owner) != want:
			m.logger.Warn().
				Str("app", app).
				Str("owner", owner).
				Str("prefix", prefix).
				Msg("Keeping entrypoint that runs in another environment")
			res.Skipped = append(res.Skipped, app)
			continue
		}

		b.remove(path)
		removed = append(removed, app)
	}
	if err := m.apply(b); err != nil {
		return res, err
	}
	res.Removed, res.Unknown = removed, unknown

	if len(apps) > 0 {
		m.logger.Info().
			Strs("apps", res.Removed).
			Strs("unknown_origin", res.Unknown).
			Msg("Removed entrypoint links")
	}
	return res, nil
}
