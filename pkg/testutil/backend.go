// pkg/testutil/backend.go
// DEPENDENCIES: pkg/conda, pkg/envinfo, pkg/errors, pkg/types
// PURPOSE: Environment Backend double that materializes packages on disk

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/types"
)

// Call records one backend invocation.
type Call struct {
	Op     string
	Prefix string
	Args   []string
}

// FakeBackend implements conda.Backend against a package catalog.
type FakeBackend struct {
	FS types.FS

	// Catalog is what installing each package name produces.
	Catalog map[string]Package
	// Updates replaces a package's contents when UpdateEnv runs, either as
	// the updated spec or as an installed dependency of it.
	Updates map[string]Package

	// Errors injected per operation name ("create", "update", ...).
	Errors map[string]error

	Calls []Call
}

var _ conda.Backend = (*FakeBackend)(nil)

// NewFakeBackend returns a FakeBackend serving pkgs.
func NewFakeBackend(fsys types.FS, pkgs ...Package) *FakeBackend {
	b := &FakeBackend{
		FS:      fsys,
		Catalog: make(map[string]Package),
		Updates: make(map[string]Package),
		Errors:  make(map[string]error),
	}
	for _, p := range pkgs {
		b.Catalog[p.Name] = p
	}
	return b
}

// FailWith makes op return a BACKEND_COMMAND error with exitCode.
func (b *FakeBackend) FailWith(op string, exitCode int) {
	b.Errors[op] = errors.BackendCommand("conda", exitCode, nil)
}

// Ops lists the operation names called so far, in order.
func (b *FakeBackend) Ops() []string {
	ops := make([]string, 0, len(b.Calls))
	for _, c := range b.Calls {
		ops = append(ops, c.Op)
	}
	return ops
}

func (b *FakeBackend) record(op, prefix string, args ...string) error {
	b.Calls = append(b.Calls, Call{Op: op, Prefix: prefix, Args: args})
	return b.Errors[op]
}

func (b *FakeBackend) install(prefix, spec string) error {
	name := conda.PackageName(spec)
	pkg, ok := b.Catalog[name]
	if !ok {
		return errors.BackendCommand("conda", 1, fmt.Errorf("PackagesNotFoundError: %s", name))
	}
	return WritePackage(b.FS, prefix, pkg)
}

func (b *FakeBackend) CreateEnv(_ context.Context, prefix, spec string, channels []string) error {
	if err := b.record("create", prefix, append([]string{spec}, channels...)...); err != nil {
		return err
	}
	if err := MakeEnv(b.FS, prefix); err != nil {
		return err
	}
	return b.install(prefix, spec)
}

func (b *FakeBackend) RemoveEnv(_ context.Context, prefix string) error {
	if err := b.record("remove", prefix); err != nil {
		return err
	}
	return b.FS.RemoveAll(prefix)
}

func (b *FakeBackend) UpdateEnv(_ context.Context, prefix, spec string, updateSpecs bool, channels []string) error {
	if err := b.record("update", prefix, append([]string{spec, fmt.Sprint(updateSpecs)}, channels...)...); err != nil {
		return err
	}
	main := conda.PackageName(spec)
	names := make([]string, 0, len(b.Updates))
	for name := range b.Updates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		// Packages other than the main one only move when already installed.
		if name != main {
			if _, err := envinfo.ReadPackage(b.FS, prefix, name); err != nil {
				continue
			}
		}
		pkg := b.Updates[name]
		b.Catalog[pkg.Name] = pkg
		if err := WritePackage(b.FS, prefix, pkg); err != nil {
			return err
		}
	}
	return nil
}

func (b *FakeBackend) InstallPackages(_ context.Context, prefix string, specs, channels []string) error {
	if err := b.record("install", prefix, specs...); err != nil {
		return err
	}
	for _, spec := range specs {
		if err := b.install(prefix, spec); err != nil {
			return err
		}
	}
	return nil
}

func (b *FakeBackend) UninstallPackages(_ context.Context, prefix string, names []string) error {
	if err := b.record("uninstall", prefix, names...); err != nil {
		return err
	}
	for _, name := range names {
		if err := RemovePackage(b.FS, prefix, name); err != nil {
			return err
		}
	}
	return nil
}

// ExportEnv writes a conda-style environment file listing the packages
// currently installed in prefix.
func (b *FakeBackend) ExportEnv(_ context.Context, prefix, file string) error {
	if err := b.record("export", prefix, file); err != nil {
		return err
	}
	entries, err := b.FS.ReadDir(filepath.Join(prefix, "conda-meta"))
	if err != nil {
		return err
	}
	out := conda.EnvFile{Name: filepath.Base(prefix)}
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(name, ".json"), "-")
		if len(parts) < 3 {
			continue
		}
		pkgName := strings.Join(parts[:len(parts)-2], "-")
		out.Dependencies = append(out.Dependencies, pkgName+"="+parts[len(parts)-2])
	}
	data, err := out.Marshal()
	if err != nil {
		return err
	}
	return b.FS.WriteFile(file, data, 0644)
}

// ImportEnv creates prefix with every dependency listed in file.
func (b *FakeBackend) ImportEnv(_ context.Context, prefix, file string, force bool) error {
	if err := b.record("import", prefix, file, fmt.Sprint(force)); err != nil {
		return err
	}
	in, err := conda.ReadEnvFile(b.FS, file)
	if err != nil {
		return err
	}
	if _, err := b.FS.Stat(prefix); err == nil && !force {
		return errors.BackendCommand("conda", 1, fmt.Errorf("prefix already exists: %s", prefix))
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := MakeEnv(b.FS, prefix); err != nil {
		return err
	}
	for _, spec := range in.Specs() {
		if err := b.install(prefix, spec); err != nil {
			return err
		}
	}
	return nil
}

func (b *FakeBackend) Clean(_ context.Context) error {
	return b.record("clean", "")
}
