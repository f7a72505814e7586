package executor_test

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/executor"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

func TestRun_StreamsOutputAndEnv(t *testing.T) {
	skipOnWindows(t)

	var out bytes.Buffer
	e := executor.New(executor.Options{
		Stdout: &out,
		Env:    map[string]string{"MAMBA_NO_BANNER": "1"},
	})

	err := e.Run(context.Background(), "/bin/sh", "-c", `echo "banner=$MAMBA_NO_BANNER"`)
	require.NoError(t, err)
	assert.Equal(t, "banner=1\n", out.String())
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	e := executor.New(executor.Options{Stderr: &bytes.Buffer{}})
	err := e.Run(context.Background(), "/bin/sh", "-c", "exit 3")
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrBackendCommand))
	code, ok := errors.BackendExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestRun_MissingProgram(t *testing.T) {
	e := executor.New(executor.Options{})
	err := e.Run(context.Background(), "condax-test-no-such-program")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackendNotFound))
}
