package condax

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yamaton/condax/pkg/conda"
	"github.com/yamaton/condax/pkg/config"
	"github.com/yamaton/condax/pkg/core"
	"github.com/yamaton/condax/pkg/executor"
	"github.com/yamaton/condax/pkg/filesystem"
	"github.com/yamaton/condax/pkg/links"
	"github.com/yamaton/condax/pkg/output"
	"github.com/yamaton/condax/pkg/paths"
	"github.com/yamaton/condax/pkg/types"
	"github.com/yamaton/condax/pkg/ui/confirmations"
	"github.com/yamaton/condax/pkg/wrapper"
)

// globalOptions holds the persistent flags of the root command.
type globalOptions struct {
	verbose    int
	quiet      int
	configFile string
}

func (g *globalOptions) verbosity() int {
	return g.verbose - g.quiet
}

// backendFactory builds the conda backend. Tests replace it.
var backendFactory = func(ctx context.Context, cfg config.Config, installer *conda.Installer, stdout io.Writer) (conda.Backend, error) {
	exe := cfg.CondaExecutable
	if exe == "" {
		var err error
		if exe, err = installer.EnsureConda(ctx); err != nil {
			return nil, err
		}
	}
	runner := executor.New(executor.Options{Stdout: stdout})
	return conda.New(exe, runner), nil
}

// confirmerFactory builds the overwrite prompt. Tests replace it.
var confirmerFactory = func() confirmations.Confirmer {
	return confirmations.NewConsoleDialog()
}

// app is everything one command invocation needs.
type app struct {
	cfg   config.Config
	paths *paths.Paths
	fs    types.FS
	links *links.Manager
	core  *core.Core
}

// newApp loads the configuration and wires the core. The conda backend is
// only resolved when withBackend is set, since that may download conda.
func newApp(ctx context.Context, g *globalOptions, channels []string, withBackend bool) (*app, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	cfg = cfg.WithChannels(channels)

	p, err := paths.New(cfg.PrefixDir, cfg.BinDir)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("prefix_dir", p.PrefixDir()).
		Str("bin_dir", p.BinDir()).
		Strs("channels", cfg.Channels).
		Str("config", cfg.Source).
		Msg("Configuration loaded")

	fsys := filesystem.NewOS()
	installer := conda.NewInstaller(p.CondaBinsDir())

	var backend conda.Backend
	if withBackend {
		var stdout io.Writer
		if g.verbosity() >= 0 {
			stdout = os.Stderr
		}
		if backend, err = backendFactory(ctx, cfg, installer, stdout); err != nil {
			return nil, err
		}
	}

	lm := links.New(links.Options{
		FS:       fsys,
		BinDir:   p.BinDir(),
		Platform: wrapper.Current(),
		Runner: func() (string, error) {
			if cfg.MicromambaExecutable != "" {
				return cfg.MicromambaExecutable, nil
			}
			return installer.EnsureMicromamba(ctx)
		},
		HideExitCode: cfg.HideExitCode,
		Confirmer:    confirmerFactory(),
	})

	c := core.New(core.Options{
		FS:               fsys,
		Backend:          backend,
		Links:            lm,
		PrefixDir:        p.PrefixDir(),
		Channels:         cfg.Channels,
		EnvironmentsFile: p.CondaEnvironmentsFile(),
	})

	return &app{cfg: cfg, paths: p, fs: fsys, links: lm, core: c}, nil
}

// printer renders command results on stdout.
func printer(cmd *cobra.Command, format string) (*output.Renderer, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(cmd.OutOrStdout(), f.Resolve(os.Stdout))
}
