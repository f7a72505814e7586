// Package envinfo answers questions about an environment prefix by reading
// the package manifests the backend keeps under conda-meta/: which packages
// are installed, which files they own and which of those are executables.
package envinfo

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/types"
)

// CondaMetaDir is the manifest directory that marks a prefix as an environment.
const CondaMetaDir = "conda-meta"

// excludedExts are never exposed even when they sit in bin/ with the execute bit.
var excludedExts = map[string]bool{
	".bak":   true,
	".txt":   true,
	".md":    true,
	".json":  true,
	".yml":   true,
	".yaml":  true,
	".html":  true,
	".xml":   true,
	".pdf":   true,
	".fq":    true,
	".fastq": true,
	".fa":    true,
	".fasta": true,
}

var exeParents = map[string]bool{
	"bin":     true,
	"sbin":    true,
	"scripts": true,
	"Scripts": true,
}

// PackageRecord is the part of a conda-meta/<name>-<version>-<build>.json
// manifest condax relies on.
type PackageRecord struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Build   string   `json:"build"`
	Files   []string `json:"files"`
}

// IsEnv reports whether prefix holds a conda-meta directory.
func IsEnv(fsys types.FS, prefix string) bool {
	info, err := fsys.Stat(filepath.Join(prefix, CondaMetaDir))
	return err == nil && info.IsDir()
}

// FindEnvs returns the environments directly under root, sorted. A missing
// root yields no environments.
func FindEnvs(fsys types.FS, root string) ([]string, error) {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", root)
	}

	var envs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		prefix := filepath.Join(root, entry.Name())
		if IsEnv(fsys, prefix) {
			envs = append(envs, prefix)
		}
	}
	sort.Strings(envs)
	return envs, nil
}

// ReadPackage returns the manifest of the package called name in prefix.
// It fails with NO_PACKAGE_METADATA when no manifest names that package.
func ReadPackage(fsys types.FS, prefix, name string) (*PackageRecord, error) {
	metaDir := filepath.Join(prefix, CondaMetaDir)
	entries, err := fsys.ReadDir(metaDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", metaDir)
	}

	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fileName, name) || filepath.Ext(fileName) != ".json" {
			continue
		}
		record, err := readRecord(fsys, filepath.Join(metaDir, fileName))
		if err != nil {
			return nil, err
		}
		if record.Name == name {
			return record, nil
		}
	}

	return nil, errors.Newf(errors.ErrNoPackageMetadata, "no package metadata for %s in %s", name, prefix).
		WithDetail("package", name).
		WithDetail("prefix", prefix)
}

// PythonVersion returns the version of the python package in prefix, or "".
func PythonVersion(fsys types.FS, prefix string) string {
	record, err := ReadPackage(fsys, prefix, "python")
	if err != nil {
		return ""
	}
	return record.Version
}

func readRecord(fsys types.FS, file string) (*PackageRecord, error) {
	data, err := fsys.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", file)
	}
	var record PackageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBadMetadata, "failed to parse package manifest %s", file)
	}
	return &record, nil
}

// FindExes returns the executables package placed in prefix, as absolute
// paths in sorted order. Only files in bin/, sbin/, Scripts/ or Library/bin/
// count, hidden and denylisted names are dropped, and the file must be
// executable on the running platform.
func FindExes(fsys types.FS, prefix, pkg string) ([]string, error) {
	record, err := ReadPackage(fsys, prefix, pkg)
	if err != nil {
		return nil, err
	}

	windows := runtime.GOOS == "windows"
	pathExts := windowsPathExts()

	var exes []string
	for _, rel := range Candidates(record.Files) {
		full := filepath.Join(prefix, filepath.FromSlash(rel))
		info, err := fsys.Stat(full)
		if err != nil {
			continue
		}
		if isExecutable(info, full, windows, pathExts) {
			exes = append(exes, full)
		}
	}
	sort.Strings(exes)
	return exes, nil
}

// Candidates filters manifest-relative paths down to the ones that could be
// exposed executables, before any filesystem check.
func Candidates(files []string) []string {
	var out []string
	for _, rel := range files {
		rel = strings.ReplaceAll(rel, `\`, "/")
		lower := strings.ToLower(rel)
		inContainer := strings.HasPrefix(rel, "bin/") ||
			strings.HasPrefix(rel, "sbin/") ||
			strings.HasPrefix(lower, "scripts") ||
			strings.HasPrefix(lower, "library")
		if !inContainer || !exeParents[path.Base(path.Dir(rel))] {
			continue
		}
		base := path.Base(rel)
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
			continue
		}
		if excludedExts[strings.ToLower(path.Ext(base))] {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

func isExecutable(info fs.FileInfo, name string, windows bool, pathExts []string) bool {
	if info.IsDir() {
		return false
	}
	if windows {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			return false
		}
		for _, e := range pathExts {
			if e == ext {
				return true
			}
		}
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

func windowsPathExts() []string {
	raw := os.Getenv("PATHEXT")
	if raw == "" {
		raw = ".COM;.EXE;.BAT;.CMD"
	}
	var exts []string
	for _, e := range strings.Split(raw, ";") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// StripExeExt drops a trailing .exe for display.
func StripExeExt(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name[:len(name)-4]
	}
	return name
}
