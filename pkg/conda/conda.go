package conda

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yamaton/condax/pkg/executor"
	"github.com/yamaton/condax/pkg/logging"
)

// Conda drives a conda (or mamba) executable.
type Conda struct {
	exe    string
	runner executor.Runner
	logger zerolog.Logger
}

var _ Backend = (*Conda)(nil)

// New returns a Conda backend for exe that runs commands through runner.
func New(exe string, runner executor.Runner) *Conda {
	return &Conda{
		exe:    exe,
		runner: runner,
		logger: logging.GetLogger("conda"),
	}
}

func (c *Conda) run(ctx context.Context, args ...string) error {
	return c.runner.Run(ctx, c.exe, args...)
}

func channelArgs(channels []string) []string {
	args := []string{"--override-channels"}
	for _, ch := range channels {
		args = append(args, "--channel", ch)
	}
	return args
}

func (c *Conda) CreateEnv(ctx context.Context, prefix, spec string, channels []string) error {
	c.logger.Debug().Str("prefix", prefix).Str("spec", spec).Msg("Creating environment")
	args := []string{"create", "--prefix", prefix}
	args = append(args, channelArgs(channels)...)
	args = append(args, "--quiet", "--yes", spec)
	return c.run(ctx, args...)
}

func (c *Conda) RemoveEnv(ctx context.Context, prefix string) error {
	c.logger.Debug().Str("prefix", prefix).Msg("Removing environment")
	return c.run(ctx, "remove", "--prefix", prefix, "--all", "--yes")
}

func (c *Conda) UpdateEnv(ctx context.Context, prefix, spec string, updateSpecs bool, channels []string) error {
	c.logger.Debug().Str("prefix", prefix).Str("spec", spec).Bool("update_specs", updateSpecs).Msg("Updating environment")
	args := []string{"update", "--prefix", prefix}
	args = append(args, channelArgs(channels)...)
	if updateSpecs {
		args = append(args, "--update-specs")
	}
	args = append(args, "--quiet", "--yes", spec)
	return c.run(ctx, args...)
}

func (c *Conda) InstallPackages(ctx context.Context, prefix string, specs, channels []string) error {
	c.logger.Debug().Str("prefix", prefix).Strs("specs", specs).Msg("Installing packages")
	args := []string{"install", "--prefix", prefix}
	args = append(args, channelArgs(channels)...)
	args = append(args, "--quiet", "--yes")
	args = append(args, specs...)
	return c.run(ctx, args...)
}

func (c *Conda) UninstallPackages(ctx context.Context, prefix string, names []string) error {
	c.logger.Debug().Str("prefix", prefix).Strs("names", names).Msg("Uninstalling packages")
	args := []string{"uninstall", "--prefix", prefix, "--quiet", "--yes"}
	args = append(args, names...)
	return c.run(ctx, args...)
}

func (c *Conda) ExportEnv(ctx context.Context, prefix, file string) error {
	return c.run(ctx, "env", "export", "--no-builds", "--prefix", prefix, "--file", file)
}

func (c *Conda) ImportEnv(ctx context.Context, prefix, file string, force bool) error {
	args := []string{"env", "create"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, "--prefix", prefix, "--file", file)
	return c.run(ctx, args...)
}

func (c *Conda) Clean(ctx context.Context) error {
	return c.run(ctx, "clean", "--all", "--yes")
}
