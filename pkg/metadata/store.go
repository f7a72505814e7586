package metadata

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/types"
)

// Store reads and writes metadata files.
type Store struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewStore returns a Store over fsys.
func NewStore(fsys types.FS) *Store {
	return &Store{fs: fsys, logger: logging.GetLogger("metadata")}
}

// Path is the metadata file of the environment at prefix.
func Path(prefix string) string {
	return filepath.Join(prefix, FileName)
}

// Create writes a fresh record holding only the main package. An empty pkg
// defaults to the prefix's base name; nil exes are discovered from the
// package manifest.
func (s *Store) Create(prefix, pkg string, exes []string) (*Metadata, error) {
	if pkg == "" {
		pkg = filepath.Base(prefix)
	}
	if exes == nil {
		found, err := envinfo.FindExes(s.fs, prefix, pkg)
		if err != nil {
			return nil, err
		}
		exes = found
	}

	m := New(NewMain(pkg, prefix, appNames(exes)))
	if err := s.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}

// TryLoad returns the record at prefix, or nil when there is none.
func (s *Store) TryLoad(prefix string) (*Metadata, error) {
	path := Path(prefix)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}

	m, err := FromJSON(data)
	if err != nil {
		if ce, ok := err.(*errors.CondaxError); ok {
			return nil, ce.WithDetail("path", path)
		}
		return nil, err
	}
	return m, nil
}

// Load returns the record at prefix, rebuilding it from the package
// manifests when the file is missing.
func (s *Store) Load(prefix string) (*Metadata, error) {
	m, err := s.TryLoad(prefix)
	if err != nil || m != nil {
		return m, err
	}

	s.logger.Info().Str("prefix", prefix).Msgf("Recreating %s", FileName)
	if _, err := s.Create(prefix, "", nil); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNoMetadata, "failed to recreate %s in %s", FileName, prefix)
	}

	m, err = s.TryLoad(prefix)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.Newf(errors.ErrNoMetadata, "failed to recreate %s in %s", FileName, prefix)
	}
	return m, nil
}

// Inject records names as injected packages, discovering each one's apps.
func (s *Store) Inject(prefix string, names []string, includeApps bool) (*Metadata, error) {
	m, err := s.Load(prefix)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		exes, err := envinfo.FindExes(s.fs, prefix, name)
		if err != nil {
			return nil, err
		}
		m.Inject(NewInjected(name, appNames(exes), includeApps))
	}
	if err := s.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Uninject drops the injected records for names.
func (s *Store) Uninject(prefix string, names []string) (*Metadata, error) {
	m, err := s.Load(prefix)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		m.Uninject(name)
	}
	if err := s.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes m to its environment, replacing any previous record.
func (s *Store) Save(m *Metadata) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	path := Path(m.Prefix())
	tmp := path + ".tmp"
	if err := s.fs.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}
	return nil
}

func appNames(exes []string) []string {
	names := make([]string, 0, len(exes))
	for _, exe := range exes {
		names = append(names, filepath.Base(exe))
	}
	return names
}
