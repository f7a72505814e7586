package condax

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/internal/version"
	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/config"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/output"
	"github.com/yamaton/condax/pkg/testutil"
	"github.com/yamaton/condax/pkg/ui/confirmations"
)

var jq = testutil.Package{Name: "jq", Version: "1.7.1", Exes: []string{"bin/jq"}}

func TestMain(m *testing.M) {
	// Keep the log file of commands run without a harness out of the real home.
	stateDir, err := os.MkdirTemp("", "condax-state")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("XDG_STATE_HOME", stateDir)
	code := m.Run()
	_ = os.RemoveAll(stateDir)
	os.Exit(code)
}

// cliHarness points condax at an isolated home with a fake conda.
type cliHarness struct {
	env        *testutil.TestEnvironment
	backend    *testutil.FakeBackend
	configFile string
}

func newCLIHarness(t *testing.T, pkgs ...testutil.Package) *cliHarness {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixtures rely on POSIX execute bits")
	}

	env := testutil.NewTestEnvironment(t)
	backend := testutil.NewFakeBackend(env.FS, pkgs...)

	configFile := filepath.Join(env.HomeDir, "condax.yaml")
	content := "prefix_dir: " + env.PrefixDir + "\n" +
		"bin_dir: " + env.BinDir + "\n" +
		"micromamba_executable: /opt/condax/bins/micromamba\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	origBackend, origConfirmer := backendFactory, confirmerFactory
	backendFactory = func(context.Context, config.Config, *conda.Installer, io.Writer) (conda.Backend, error) {
		return backend, nil
	}
	confirmerFactory = func() confirmations.Confirmer { return confirmations.Always(false) }
	t.Cleanup(func() {
		backendFactory, confirmerFactory = origBackend, origConfirmer
	})

	return &cliHarness{env: env, backend: backend, configFile: configFile}
}

func (h *cliHarness) run(args ...string) (string, error) {
	return execute(append(args, "--config", h.configFile, "-q")...)
}

func execute(args ...string) (string, error) {
	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewRootCmd_Commands(t *testing.T) {
	rootCmd := NewRootCmd()

	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{
		"install", "remove", "inject", "uninject", "update", "list",
		"fix-links", "export", "import", "ensure-path", "config", "version", "completion",
	} {
		assert.Contains(t, names, want)
	}

	remove, _, err := rootCmd.Find([]string{"uninstall"})
	require.NoError(t, err)
	assert.Equal(t, "remove", remove.Name())
}

func TestVersionCmd(t *testing.T) {
	out, err := execute("version", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "condax version "+version.Version)
}

func TestCompletionCmd(t *testing.T) {
	out, err := execute("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "condax")

	_, err = execute("completion", "tcsh")
	assert.Error(t, err)
}

func TestUpdateCmd_Arguments(t *testing.T) {
	_, err := execute("update", "-q")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = execute("update", "--all", "jq", "-q")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestInjectCmd_RequiresName(t *testing.T) {
	_, err := execute("inject", "pandas", "-q")
	assert.Error(t, err)
}

func TestInstallListRemove(t *testing.T) {
	h := newCLIHarness(t, jq)

	out, err := h.run("install", "jq", "-c", "bioconda")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed jq")
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())

	require.Len(t, h.backend.Calls, 1)
	assert.Equal(t, []string{"jq", "bioconda", "conda-forge"}, h.backend.Calls[0].Args)

	out, err = h.run("list", "--format", "json")
	require.NoError(t, err)
	var listing output.Listing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.Environments, 1)
	assert.Equal(t, "jq", listing.Environments[0].Name)
	assert.Equal(t, "1.7.1", listing.Environments[0].Package.Version)
	assert.Equal(t, []output.App{{Name: "jq"}}, listing.Environments[0].Apps)

	out, err = h.run("list", "--short", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "jq 1.7.1\n", out)

	out, err = h.run("remove", "jq")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed jq")
	assert.Empty(t, h.env.BinEntries())
}

func TestInstallCmd_AlreadyInstalled(t *testing.T) {
	h := newCLIHarness(t, jq)

	_, err := h.run("install", "jq")
	require.NoError(t, err)

	_, err = h.run("install", "jq")
	require.Error(t, err)
	assert.Equal(t, 101, errors.ExitCode(err))
}

func TestFixLinksCmd(t *testing.T) {
	h := newCLIHarness(t, jq)

	_, err := h.run("install", "jq")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(h.env.BinDir, "jq")))

	out, err := h.run("fix-links")
	require.NoError(t, err)
	assert.Contains(t, out, "Relinked 1 apps")
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
}

func TestEnsurePathCmd(t *testing.T) {
	h := newCLIHarness(t)
	t.Setenv("PATH", "/usr/bin:/bin")

	out, err := h.run("ensure-path")
	require.NoError(t, err)
	assert.Contains(t, out, "Added "+h.env.BinDir)

	profile, err := os.ReadFile(filepath.Join(h.env.HomeDir, ".profile"))
	require.NoError(t, err)
	assert.Contains(t, string(profile), h.env.BinDir)

	out, err = h.run("ensure-path")
	require.NoError(t, err)
	assert.Contains(t, out, "already set up")

	t.Setenv("PATH", h.env.BinDir+":/usr/bin")
	out, err = h.run("ensure-path")
	require.NoError(t, err)
	assert.Contains(t, out, "already on PATH")
}

func TestConfigCmd(t *testing.T) {
	h := newCLIHarness(t)
	t.Setenv("CONDAX_CHANNELS", "bioconda,conda-forge")

	out, err := h.run("config")
	require.NoError(t, err)
	assert.Contains(t, out, "prefix_dir: "+h.env.PrefixDir)
	assert.Contains(t, out, "bioconda")

	out, err = h.run("config", "--format", "toml")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "prefix_dir = "), out)
}

func TestUpdateCmd_ReportsVersionChange(t *testing.T) {
	h := newCLIHarness(t, jq)

	_, err := h.run("install", "jq")
	require.NoError(t, err)

	h.backend.Updates["jq"] = testutil.Package{Name: "jq", Version: "1.8.0", Exes: []string{"bin/jq", "bin/jq-debug"}}

	out, err := h.run("update", "jq")
	require.NoError(t, err)
	assert.Contains(t, out, "jq: 1.7.1 -> 1.8.0 (upgraded)")
	assert.Contains(t, out, "linked: jq-debug")
	assert.Equal(t, []string{"jq", "jq-debug"}, h.env.BinEntries())
}
