package core_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/yamaton/condax/pkg/core"
	"github.com/yamaton/condax/pkg/links"
	"github.com/yamaton/condax/pkg/testutil"
	"github.com/yamaton/condax/pkg/ui/confirmations"
	"github.com/yamaton/condax/pkg/wrapper"
)

const runnerPath = "/opt/condax/bins/micromamba"

var (
	jq      = testutil.Package{Name: "jq", Version: "1.7.1", Exes: []string{"bin/jq"}}
	ripgrep = testutil.Package{Name: "ripgrep", Version: "14.1.0", Exes: []string{"bin/rg"}}
	black   = testutil.Package{Name: "black", Version: "24.2.0", Exes: []string{"bin/black", "bin/blackd"}, Files: []string{"lib/black/__init__.py"}}
	python  = testutil.Package{Name: "python", Version: "3.12.2", Exes: []string{"bin/python3"}}
)

// harness wires a Core to a fake backend inside an isolated home.
type harness struct {
	env     *testutil.TestEnvironment
	backend *testutil.FakeBackend
	links   *links.Manager
	core    *core.Core
}

func newHarness(t *testing.T, confirmer confirmations.Confirmer, pkgs ...testutil.Package) *harness {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixtures rely on POSIX execute bits")
	}

	env := testutil.NewTestEnvironment(t)
	backend := testutil.NewFakeBackend(env.FS, pkgs...)
	lm := links.New(links.Options{
		FS:        env.FS,
		BinDir:    env.BinDir,
		Platform:  wrapper.POSIX,
		Runner:    func() (string, error) { return runnerPath, nil },
		Confirmer: confirmer,
	})
	c := core.New(core.Options{
		FS:               env.FS,
		Backend:          backend,
		Links:            lm,
		PrefixDir:        env.PrefixDir,
		Channels:         []string{"conda-forge"},
		EnvironmentsFile: filepath.Join(env.HomeDir, ".conda", "environments.txt"),
	})
	return &harness{env: env, backend: backend, links: lm, core: c}
}

func (h *harness) owner(t *testing.T, app string) string {
	t.Helper()
	prefix, _ := wrapper.ReadPrefix(h.env.FS, h.links.WrapperPath(app))
	return prefix
}
