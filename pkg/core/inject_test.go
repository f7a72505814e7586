package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/metadata"
)

func TestInject_WithoutIncludeApps(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))

	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, false, false))

	m, err := h.core.Store().TryLoad(h.core.Prefix("jq"))
	require.NoError(t, err)
	require.Contains(t, m.Injected, "ripgrep")
	assert.False(t, m.Injected["ripgrep"].IncludeApps)
	assert.Equal(t, []string{"jq"}, m.Apps())
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
}

func TestInject_WithIncludeApps(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))

	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep=14"}, true, false))

	assert.Equal(t, []string{"jq", "rg"}, h.env.BinEntries())
	assert.Equal(t, h.core.Prefix("jq"), h.owner(t, "rg"))
	assert.Equal(t, []string{"create", "install"}, h.backend.Ops())
	assert.Equal(t, []string{"ripgrep=14"}, h.backend.Calls[1].Args)
}

func TestInject_AgainWithoutIncludeAppsUnlinks(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))
	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, true, false))
	require.Equal(t, []string{"jq", "rg"}, h.env.BinEntries())

	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, false, false))

	m, err := h.core.Store().Load(h.core.Prefix("jq"))
	require.NoError(t, err)
	assert.False(t, m.Injected["ripgrep"].IncludeApps)
	assert.Equal(t, []string{"jq"}, m.Apps())
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
}

func TestInject_NotInstalled(t *testing.T) {
	h := newHarness(t, nil, ripgrep)

	err := h.core.Inject(context.Background(), "jq", []string{"ripgrep"}, true, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageNotInstalled))
	assert.Equal(t, 21, errors.ExitCode(err))
	assert.Empty(t, h.backend.Calls)
}

func TestUninject_AbsentNameChangesNothing(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))
	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, true, false))

	before, err := os.ReadFile(metadata.Path(h.core.Prefix("jq")))
	require.NoError(t, err)
	calls := len(h.backend.Calls)

	require.NoError(t, h.core.Uninject(ctx, "jq", []string{"fd", "bat"}))

	after, err := os.ReadFile(metadata.Path(h.core.Prefix("jq")))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, h.backend.Calls, calls)
	assert.Equal(t, []string{"jq", "rg"}, h.env.BinEntries())
}

func TestUninject(t *testing.T) {
	h := newHarness(t, nil, jq, ripgrep)
	ctx := context.Background()
	require.NoError(t, h.core.Install(ctx, "jq", false))
	require.NoError(t, h.core.Inject(ctx, "jq", []string{"ripgrep"}, true, false))

	require.NoError(t, h.core.Uninject(ctx, "jq", []string{"ripgrep", "fd"}))

	last := h.backend.Calls[len(h.backend.Calls)-1]
	assert.Equal(t, "uninstall", last.Op)
	assert.Equal(t, []string{"ripgrep"}, last.Args)

	m, err := h.core.Store().TryLoad(h.core.Prefix("jq"))
	require.NoError(t, err)
	assert.Empty(t, m.Injected)
	assert.Equal(t, []string{"jq"}, h.env.BinEntries())
}

func TestUninject_NotInstalled(t *testing.T) {
	h := newHarness(t, nil)

	err := h.core.Uninject(context.Background(), "jq", []string{"ripgrep"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageNotInstalled))
}
