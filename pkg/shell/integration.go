package shell

import (
	"os"
	"path/filepath"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/types"
)

// Result reports what EnsurePath changed.
type Result struct {
	// AlreadyOnPath is set when the current PATH already has the directory.
	AlreadyOnPath bool
	// Updated lists the rc files that received the snippet.
	Updated []string
}

// EnsurePath makes dir available on PATH for future shells started by the
// user owning home. pathEnv is the current PATH value.
func EnsurePath(fsys types.FS, home, dir, pathEnv string) (Result, error) {
	log := logging.GetLogger("shell")

	var res Result
	if OnPath(dir, pathEnv) {
		res.AlreadyOnPath = true
		log.Debug().Str("dir", dir).Msg("Directory already on PATH")
	}

	var existing []RCFile
	for _, rc := range RCFiles(home) {
		if _, err := fsys.Stat(rc.Path); err == nil {
			existing = append(existing, rc)
		}
	}
	if len(existing) == 0 {
		if res.AlreadyOnPath {
			return res, nil
		}
		existing = []RCFile{{Path: filepath.Join(home, ".profile")}}
	}

	for _, rc := range existing {
		updated, err := appendSnippet(fsys, rc, dir)
		if err != nil {
			return res, err
		}
		if updated {
			log.Info().Str("file", rc.Path).Str("dir", dir).Msg("Added directory to PATH")
			res.Updated = append(res.Updated, rc.Path)
		}
	}
	return res, nil
}

func appendSnippet(fsys types.FS, rc RCFile, dir string) (bool, error) {
	content, err := fsys.ReadFile(rc.Path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", rc.Path)
	}
	if HasSnippet(string(content), dir) {
		return false, nil
	}

	perm := os.FileMode(0644)
	if info, err := fsys.Stat(rc.Path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsys.MkdirAll(filepath.Dir(rc.Path), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(rc.Path))
	}

	content = append(content, PathSnippet(dir, rc.Fish)...)
	if err := fsys.WriteFile(rc.Path, content, perm); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", rc.Path)
	}
	return true, nil
}
