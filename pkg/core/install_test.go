package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/testutil"
	"github.com/yamaton/condax/pkg/ui/confirmations"
)

func TestInstall_Fresh(t *testing.T) {
	h := newHarness(t, nil, jq)
	ctx := context.Background()

	require.NoError(t, h.core.Install(ctx, "jq>=1.7", false))

	prefix := h.core.Prefix("jq")
	exes, err := envinfo.FindExes(h.env.FS, prefix, "jq")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(prefix, "bin", "jq")}, exes)

	m, err := h.core.Store().TryLoad(prefix)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "jq", m.Main.Name)
	assert.Equal(t, []string{"jq"}, m.Apps())

	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
	assert.Equal(t, prefix, h.owner(t, "jq"))

	require.Len(t, h.backend.Calls, 1)
	assert.Equal(t, "create", h.backend.Calls[0].Op)
	assert.Equal(t, []string{"jq>=1.7", "conda-forge"}, h.backend.Calls[0].Args)
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	h := newHarness(t, nil, jq)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))

	err := h.core.Install(ctx, "jq", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageInstalled))
	assert.Equal(t, 101, errors.ExitCode(err))

	require.NoError(t, h.core.Install(ctx, "jq", true))
	assert.Equal(t, []string{"create", "remove", "create"}, h.backend.Ops())
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
	assert.True(t, envinfo.IsEnv(h.env.FS, h.core.Prefix("jq")))
}

func TestInstall_NotAnEnv(t *testing.T) {
	h := newHarness(t, nil, jq)
	prefix := h.core.Prefix("jq")
	require.NoError(t, os.MkdirAll(prefix, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "notes.txt"), []byte("mine"), 0644))

	err := h.core.Install(context.Background(), "jq", true)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotAnEnv))
	assert.Empty(t, h.backend.Calls)

	_, statErr := os.Stat(filepath.Join(prefix, "notes.txt"))
	assert.NoError(t, statErr)
}

func TestInstall_EmptyDirectoryIsReused(t *testing.T) {
	h := newHarness(t, nil, jq)
	require.NoError(t, os.MkdirAll(h.core.Prefix("jq"), 0755))

	require.NoError(t, h.core.Install(context.Background(), "jq", false))
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
}

func TestInstall_BackendFailureIsSurfaced(t *testing.T) {
	h := newHarness(t, nil, jq)
	h.backend.FailWith("create", 2)

	err := h.core.Install(context.Background(), "jq", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackendCommand))
	assert.Empty(t, h.env.BinEntries())
}

func TestInstall_DeclinedOverwriteKeepsOtherOwner(t *testing.T) {
	tool := func(name string) testutil.Package {
		return testutil.Package{Name: name, Exes: []string{"bin/tool"}}
	}
	h := newHarness(t, confirmations.Always(false), tool("first"), tool("second"))
	ctx := context.Background()

	require.NoError(t, h.core.Install(ctx, "first", false))
	require.NoError(t, h.core.Install(ctx, "second", false))

	assert.Equal(t, h.core.Prefix("first"), h.owner(t, "tool"))
}

func writeEnvFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tools.yml")
	require.NoError(t, os.WriteFile(path, []byte(`name: tools
channels:
  - conda-forge
dependencies:
  - jq=1.7.1
  - ripgrep
`), 0644))
	return path
}

func TestInstallFromEnvFile(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	file := writeEnvFile(t, t.TempDir())

	require.NoError(t, h.core.InstallFromEnvFile(context.Background(), file, []string{"jq", "ripgrep"}, false))

	prefix := h.core.Prefix("jq")
	m, err := h.core.Store().TryLoad(prefix)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "jq", m.Main.Name)
	require.Contains(t, m.Injected, "ripgrep")
	assert.True(t, m.Injected["ripgrep"].IncludeApps)
	assert.Equal(t, []string{"rg"}, m.Injected["ripgrep"].Apps)

	assert.Equal(t, []string{"jq", "rg"}, h.env.BinEntries())
	assert.Equal(t, prefix, h.owner(t, "rg"))
	assert.Equal(t, []string{"import"}, h.backend.Ops())
}

func TestInstallFromEnvFile_MissingPackage(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	file := writeEnvFile(t, t.TempDir())

	err := h.core.InstallFromEnvFile(context.Background(), file, []string{"jq", "fd"}, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageMissingInEnvFile))
	assert.Equal(t, 22, errors.ExitCode(err))
	assert.Empty(t, h.backend.Calls)
}

func TestRemove(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))
	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, true, false))
	require.Equal(t, []string{"jq", "rg"}, h.env.BinEntries())

	require.NoError(t, h.core.Remove(ctx, "jq"))
	assert.Empty(t, h.env.BinEntries())
	assert.False(t, envinfo.IsEnv(h.env.FS, h.core.Prefix("jq")))
}

func TestRemove_NotInstalledIsNoop(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.core.Remove(context.Background(), "nothing"))
	assert.Empty(t, h.backend.Calls)
}

func TestRemove_KeepsWrapperTakenOverByAnotherEnv(t *testing.T) {
	tool := func(name string) testutil.Package {
		return testutil.Package{Name: name, Exes: []string{"bin/tool"}}
	}
	h := newHarness(t, confirmations.Always(true), tool("first"), tool("second"))
	ctx := context.Background()

	require.NoError(t, h.core.Install(ctx, "first", false))
	require.NoError(t, h.core.Install(ctx, "second", false))
	require.Equal(t, h.core.Prefix("second"), h.owner(t, "tool"))

	require.NoError(t, h.core.Remove(ctx, "first"))
	assert.Equal(t, []string{"tool"}, h.env.BinEntries())
	assert.Equal(t, h.core.Prefix("second"), h.owner(t, "tool"))
}
