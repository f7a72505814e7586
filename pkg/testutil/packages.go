// pkg/testutil/packages.go
// DEPENDENCIES: pkg/types
// PURPOSE: Fabricate installed packages inside an environment prefix

package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/types"
)

// Package describes what installing a package puts into a prefix.
type Package struct {
	Name    string
	Version string
	Build   string
	// Exes are prefix-relative paths written with mode 0755.
	Exes []string
	// Files are prefix-relative paths written with mode 0644.
	Files []string
}

// ManifestName is the conda-meta file name for the package.
func (p Package) ManifestName() string {
	return fmt.Sprintf("%s-%s-%s.json", p.Name, p.versionOrDefault(), p.buildOrDefault())
}

func (p Package) versionOrDefault() string {
	if p.Version == "" {
		return "1.0.0"
	}
	return p.Version
}

func (p Package) buildOrDefault() string {
	if p.Build == "" {
		return "h0_0"
	}
	return p.Build
}

type manifest struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Build   string   `json:"build"`
	Files   []string `json:"files"`
}

// MakeEnv turns prefix into an empty environment.
func MakeEnv(fsys types.FS, prefix string) error {
	metaDir := filepath.Join(prefix, "conda-meta")
	if err := fsys.MkdirAll(metaDir, 0755); err != nil {
		return err
	}
	return fsys.WriteFile(filepath.Join(metaDir, "history"), []byte("==> created by testutil <==\n"), 0644)
}

// WritePackage installs pkg into prefix, replacing any previous version.
func WritePackage(fsys types.FS, prefix string, pkg Package) error {
	if err := RemovePackage(fsys, prefix, pkg.Name); err != nil {
		return err
	}
	if err := MakeEnv(fsys, prefix); err != nil {
		return err
	}

	write := func(rel string, perm os.FileMode) error {
		full := filepath.Join(prefix, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		content := fmt.Sprintf("#!/bin/sh\n# %s %s\n", pkg.Name, pkg.versionOrDefault())
		if err := fsys.WriteFile(full, []byte(content), perm); err != nil {
			return err
		}
		return fsys.Chmod(full, perm)
	}

	files := make([]string, 0, len(pkg.Exes)+len(pkg.Files))
	for _, rel := range pkg.Exes {
		if err := write(rel, 0755); err != nil {
			return err
		}
		files = append(files, rel)
	}
	for _, rel := range pkg.Files {
		if err := write(rel, 0644); err != nil {
			return err
		}
		files = append(files, rel)
	}
	sort.Strings(files)

	data, err := json.MarshalIndent(manifest{
		Name:    pkg.Name,
		Version: pkg.versionOrDefault(),
		Build:   pkg.buildOrDefault(),
		Files:   files,
	}, "", "  ")
	if err != nil {
		return err
	}
	return fsys.WriteFile(filepath.Join(prefix, "conda-meta", pkg.ManifestName()), data, 0644)
}

// RemovePackage deletes the files and manifest of the package called name.
// It is a no-op when the package is not installed.
func RemovePackage(fsys types.FS, prefix, name string) error {
	metaDir := filepath.Join(prefix, "conda-meta")
	entries, err := fsys.ReadDir(metaDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), name+"-") || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		manifestPath := filepath.Join(metaDir, entry.Name())
		data, err := fsys.ReadFile(manifestPath)
		if err != nil {
			return err
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if m.Name != name {
			continue
		}
		for _, rel := range m.Files {
			if err := fsys.Remove(filepath.Join(prefix, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		return fsys.Remove(manifestPath)
	}
	return nil
}
