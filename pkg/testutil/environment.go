// pkg/testutil/environment.go
// DEPENDENCIES: pkg/filesystem, pkg/types
// PURPOSE: Isolated HOME with a prefix root and a bin directory

package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/yamaton/condax/pkg/filesystem"
	"github.com/yamaton/condax/pkg/types"
)

// TestEnvironment provides an isolated condax layout under a temp dir.
type TestEnvironment struct {
	HomeDir   string
	PrefixDir string
	BinDir    string
	FS        types.FS

	t *testing.T
}

// NewTestEnvironment creates the directories and points HOME at them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		HomeDir:   filepath.Join(root, "home"),
		PrefixDir: filepath.Join(root, "home", ".local", "share", "condax", "envs"),
		BinDir:    filepath.Join(root, "home", ".local", "bin"),
		FS:        filesystem.NewOS(),
		t:         t,
	}
	for _, dir := range []string{env.HomeDir, env.PrefixDir, env.BinDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	return env
}

// Prefix is the environment prefix for name.
func (e *TestEnvironment) Prefix(name string) string {
	return filepath.Join(e.PrefixDir, name)
}

// Install fabricates an environment holding pkgs without a backend.
func (e *TestEnvironment) Install(name string, pkgs ...Package) string {
	e.t.Helper()
	prefix := e.Prefix(name)
	if err := MakeEnv(e.FS, prefix); err != nil {
		e.t.Fatalf("Failed to create env %s: %v", prefix, err)
	}
	for _, p := range pkgs {
		if err := WritePackage(e.FS, prefix, p); err != nil {
			e.t.Fatalf("Failed to write package %s: %v", p.Name, err)
		}
	}
	return prefix
}

// BinEntries lists the names in the bin directory, sorted.
func (e *TestEnvironment) BinEntries() []string {
	e.t.Helper()
	entries, err := os.ReadDir(e.BinDir)
	if err != nil {
		e.t.Fatalf("Failed to read bin dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}
