package metadata_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/envinfo"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/metadata"
	"github.com/yamaton/condax/pkg/testutil"
)

var (
	jq      = testutil.Package{Name: "jq", Version: "1.7.1", Exes: []string{"bin/jq"}}
	ripgrep = testutil.Package{Name: "ripgrep", Version: "14.1.0", Exes: []string{"bin/rg"}}
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("execute-bit semantics")
	}
}

func TestStore_CreateAndTryLoad(t *testing.T) {
	skipOnWindows(t)
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("jq", jq)
	store := metadata.NewStore(env.FS)

	m, err := store.TryLoad(prefix)
	require.NoError(t, err)
	assert.Nil(t, m)

	created, err := store.Create(prefix, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "jq", created.Main.Name)
	assert.Equal(t, []string{"jq"}, created.Main.Apps)
	assert.Equal(t, prefix, created.Prefix())

	loaded, err := store.TryLoad(prefix)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	_, err = os.Stat(metadata.Path(prefix) + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_CreateWithExplicitExecutables(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("tools")
	store := metadata.NewStore(env.FS)

	m, err := store.Create(prefix, "mytool", []string{filepath.Join(prefix, "bin", "b"), filepath.Join(prefix, "bin", "a")})
	require.NoError(t, err)
	assert.Equal(t, "mytool", m.Main.Name)
	assert.Equal(t, []string{"a", "b"}, m.Main.Apps)
}

func TestStore_LoadReconstructsMissingMetadata(t *testing.T) {
	skipOnWindows(t)
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("jq", jq)
	store := metadata.NewStore(env.FS)

	_, err := store.Create(prefix, "", nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(metadata.Path(prefix)))

	m, err := store.Load(prefix)
	require.NoError(t, err)

	exes, err := envinfo.FindExes(env.FS, prefix, "jq")
	require.NoError(t, err)
	var names []string
	for _, exe := range exes {
		names = append(names, filepath.Base(exe))
	}
	assert.Equal(t, names, m.Apps())

	_, err = os.Stat(metadata.Path(prefix))
	assert.NoError(t, err, "metadata file is rewritten on reconstruction")
}

func TestStore_LoadFailsWithoutManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("broken")
	store := metadata.NewStore(env.FS)

	_, err := store.Load(prefix)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoMetadata))
}

func TestStore_BadMetadataIsNotRecovered(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("jq", jq)
	store := metadata.NewStore(env.FS)

	garbage := []byte(`{"main_package": {"name": "jq"}}`)
	require.NoError(t, os.WriteFile(metadata.Path(prefix), garbage, 0644))

	_, err := store.Load(prefix)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBadMetadata))
	assert.Equal(t, 103, errors.ExitCode(err))

	data, err := os.ReadFile(metadata.Path(prefix))
	require.NoError(t, err)
	assert.Equal(t, garbage, data, "bad metadata is left untouched")
}

func TestStore_InjectUninject(t *testing.T) {
	skipOnWindows(t)
	env := testutil.NewTestEnvironment(t)
	prefix := env.Install("jq", jq, ripgrep)
	store := metadata.NewStore(env.FS)
	_, err := store.Create(prefix, "", nil)
	require.NoError(t, err)

	m, err := store.Inject(prefix, []string{"ripgrep"}, false)
	require.NoError(t, err)
	require.Contains(t, m.Injected, "ripgrep")
	assert.Equal(t, []string{"rg"}, m.Injected["ripgrep"].Apps)
	assert.False(t, m.Injected["ripgrep"].IncludeApps)
	assert.Equal(t, []string{"jq"}, m.Apps())

	m, err = store.Inject(prefix, []string{"ripgrep"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"jq", "rg"}, m.Apps())

	_, err = store.Inject(prefix, []string{"missing"}, true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoPackageMetadata))

	m, err = store.Uninject(prefix, []string{"ripgrep"})
	require.NoError(t, err)
	assert.Empty(t, m.Injected)

	reloaded, err := store.Load(prefix)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Injected)
}
