package executor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
)

// Runner runs a program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Options contains configuration for the executor
type Options struct {
	Logger zerolog.Logger
	// Stdout receives the child's standard output; nil discards it.
	Stdout io.Writer
	// Stderr receives the child's standard error; nil means os.Stderr.
	Stderr io.Writer
	// Env is added on top of the current process environment.
	Env map[string]string
}

// Executor runs programs sequentially and synchronously
type Executor struct {
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+opts.Env[k])
	}

	return &Executor{
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		env:    env,
	}
}

// Run executes name with args and waits for it to finish. A non-zero exit
// yields a BACKEND_COMMAND error; failing to start yields BACKEND_NOT_FOUND.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	logging.LogCommand(name, args)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	cmd.Env = e.env

	err := cmd.Run()
	e.logger.Debug().
		Str("command", name).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("Command finished")

	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.BackendCommand(name, exitErr.ExitCode(), err)
	}
	return errors.Wrapf(err, errors.ErrBackendNotFound, "failed to run %s", name)
}
