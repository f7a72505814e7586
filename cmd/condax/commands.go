package condax

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yamaton/condax/internal/version"
	"github.com/yamaton/condax/pkg/core"
	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/logging"
	"github.com/yamaton/condax/pkg/output"
	"github.com/yamaton/condax/pkg/paths"
	"github.com/yamaton/condax/pkg/shell"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "condax",
		Short:   MsgRootShort,
		Long:    fmt.Sprintf(MsgRootLong, paths.DefaultPrefixDir(), paths.DefaultBinDir()),
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbose, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().CountVarP(&g.quiet, "quiet", "q", MsgFlagQuiet)
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", MsgFlagConfig)
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml", "toml")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "maintenance",
		Title: "MAINTENANCE:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetHelpCommandGroupID("misc")

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newRemoveCmd(g))
	rootCmd.AddCommand(newInjectCmd(g))
	rootCmd.AddCommand(newUninjectCmd(g))
	rootCmd.AddCommand(newUpdateCmd(g))
	rootCmd.AddCommand(newListCmd(g))
	rootCmd.AddCommand(newFixLinksCmd(g))
	rootCmd.AddCommand(newExportCmd(g))
	rootCmd.AddCommand(newImportCmd(g))
	rootCmd.AddCommand(newEnsurePathCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// envNamesCompletion provides shell completion for installed environments
func envNamesCompletion(g *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		a, err := newApp(cmd.Context(), g, nil, false)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		envs, err := a.core.Environments()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var names []string
		for _, env := range envs {
			if !contains(args, env) && strings.HasPrefix(env, toComplete) {
				names = append(names, env)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func say(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	var (
		channels []string
		force    bool
		envFile  string
	)

	cmd := &cobra.Command{
		Use:     "install [packages...]",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, channels, true)
			if err != nil {
				return err
			}

			if envFile != "" {
				if err := a.core.InstallFromEnvFile(cmd.Context(), envFile, args, force); err != nil {
					return err
				}
				say(cmd, MsgInstalled, strings.Join(args, ", "))
				return nil
			}

			for _, spec := range args {
				if err := a.core.Install(cmd.Context(), spec, force); err != nil {
					return err
				}
				say(cmd, MsgInstalled, spec)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&channels, "channel", "c", nil, MsgFlagChannel)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().StringVar(&envFile, "file", "", MsgFlagFile)
	_ = cmd.MarkFlagFilename("file", "yml", "yaml")

	return cmd
}

func newRemoveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "remove [packages...]",
		Aliases:           []string{"uninstall"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: envNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, true)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := a.core.Remove(cmd.Context(), name); err != nil {
					return err
				}
				say(cmd, MsgRemoved, name)
			}
			return nil
		},
	}
}

func newInjectCmd(g *globalOptions) *cobra.Command {
	var (
		channels    []string
		force       bool
		envName     string
		includeApps bool
	)

	cmd := &cobra.Command{
		Use:     "inject [packages...]",
		Short:   MsgInjectShort,
		Long:    MsgInjectLong,
		Example: MsgInjectExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, channels, true)
			if err != nil {
				return err
			}
			env := strings.TrimSpace(envName)
			if err := a.core.Inject(cmd.Context(), env, args, includeApps, force); err != nil {
				return err
			}
			say(cmd, MsgInjected, strings.Join(args, ", "), env)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&channels, "channel", "c", nil, MsgFlagChannel)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().StringVarP(&envName, "name", "n", "", MsgFlagEnvName)
	cmd.Flags().BoolVar(&includeApps, "include-apps", false, MsgFlagIncludeApps)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.RegisterFlagCompletionFunc("name", envNamesCompletion(g))

	return cmd
}

func newUninjectCmd(g *globalOptions) *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:     "uninject [packages...]",
		Short:   MsgUninjectShort,
		Long:    MsgUninjectLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, true)
			if err != nil {
				return err
			}
			env := strings.TrimSpace(envName)
			if err := a.core.Uninject(cmd.Context(), env, args); err != nil {
				return err
			}
			say(cmd, MsgUninjected, strings.Join(args, ", "), env)
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "name", "n", "", MsgFlagEnvName)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.RegisterFlagCompletionFunc("name", envNamesCompletion(g))

	return cmd
}

func newUpdateCmd(g *globalOptions) *cobra.Command {
	var (
		channels    []string
		force       bool
		all         bool
		updateSpecs bool
	)

	cmd := &cobra.Command{
		Use:               "update [packages...]",
		Short:             MsgUpdateShort,
		Long:              MsgUpdateLong,
		Example:           MsgUpdateExample,
		GroupID:           "core",
		ValidArgsFunction: envNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrNoPackages)
			}
			if all && len(args) > 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrPackagesAndAll)
			}

			a, err := newApp(cmd.Context(), g, channels, true)
			if err != nil {
				return err
			}

			if all {
				results, err := a.core.UpdateAll(cmd.Context(), updateSpecs, force)
				for _, res := range results {
					reportUpdate(cmd, res)
				}
				return err
			}

			for _, spec := range args {
				res, err := a.core.Update(cmd.Context(), spec, updateSpecs, force)
				if err != nil {
					return err
				}
				reportUpdate(cmd, res)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&channels, "channel", "c", nil, MsgFlagChannel)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.Flags().BoolVar(&updateSpecs, "update-specs", false, MsgFlagUpdateSpecs)

	return cmd
}

func reportUpdate(cmd *cobra.Command, res *core.UpdateResult) {
	if res == nil {
		return
	}
	if res.Recreated {
		say(cmd, MsgUpdateRecreated, res.Env)
	}
	if res.Change == core.VersionUnchanged {
		say(cmd, MsgUpdateUnchanged, res.Env, res.After)
	} else {
		say(cmd, MsgUpdateChanged, res.Env, res.Before, res.After, res.Change)
	}
	if len(res.Created) > 0 {
		say(cmd, MsgLinksCreated, strings.Join(res.Created, ", "))
	}
	if len(res.Removed) > 0 {
		say(cmd, MsgLinksRemoved, strings.Join(res.Removed, ", "))
	}
}

func newListCmd(g *globalOptions) *cobra.Command {
	var (
		short           bool
		includeInjected bool
		format          string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := printer(cmd, format)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), g, nil, false)
			if err != nil {
				return err
			}
			listing, err := a.core.List(includeInjected)
			if err != nil {
				return err
			}
			return renderer.RenderList(listing, output.ListOptions{
				Short:           short,
				IncludeInjected: includeInjected,
			})
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, MsgFlagShort)
	cmd.Flags().BoolVar(&includeInjected, "include-injected", false, MsgFlagIncludeInjected)
	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"auto", "term", "text", "json"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func newFixLinksCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "fix-links",
		Short:   MsgFixLinksShort,
		Long:    MsgFixLinksLong,
		GroupID: "maintenance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, false)
			if err != nil {
				return err
			}
			res, err := a.core.FixLinks()
			if err != nil {
				return err
			}
			say(cmd, MsgFixLinksPruned, len(res.Pruned.Stale), len(res.Pruned.Dangling))
			say(cmd, MsgFixLinksLinked, len(res.Relinked))
			if len(res.Registered) > 0 {
				say(cmd, MsgRegistered, len(res.Registered), a.paths.CondaEnvironmentsFile())
			}
			return nil
		},
	}
}

func newExportCmd(g *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   MsgExportShort,
		Long:    MsgExportLong,
		GroupID: "maintenance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, true)
			if err != nil {
				return err
			}
			envs, err := a.core.Export(cmd.Context(), dir)
			if err != nil {
				return err
			}
			say(cmd, MsgExported, len(envs), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "condax_exported", MsgFlagExportDir)
	_ = cmd.MarkFlagDirname("dir")

	return cmd
}

func newImportCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "import <directory>",
		Short:   MsgImportShort,
		Long:    MsgImportLong,
		GroupID: "maintenance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return errors.Newf(errors.ErrInvalidInput, "not a directory: %s", dir)
			}
			a, err := newApp(cmd.Context(), g, nil, true)
			if err != nil {
				return err
			}
			envs, err := a.core.Import(cmd.Context(), dir, force)
			if err != nil {
				return err
			}
			say(cmd, MsgImported, len(envs), dir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)

	return cmd
}

func newEnsurePathCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ensure-path",
		Short:   MsgEnsurePathShort,
		Long:    MsgEnsurePathLong,
		GroupID: "maintenance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, false)
			if err != nil {
				return err
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return errors.Wrap(err, errors.ErrFileAccess, "failed to find home directory")
			}

			binDir := a.paths.BinDir()
			res, err := shell.EnsurePath(a.fs, home, binDir, os.Getenv("PATH"))
			if err != nil {
				return err
			}
			switch {
			case len(res.Updated) > 0:
				files := make([]string, len(res.Updated))
				for i, f := range res.Updated {
					files[i] = filepath.Base(f)
				}
				say(cmd, MsgPathUpdated, binDir, strings.Join(files, ", "))
			case res.AlreadyOnPath:
				say(cmd, MsgAlreadyOnPath, binDir)
			default:
				say(cmd, MsgPathNothingToDo, binDir)
			}
			return nil
		},
	}
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), g, nil, false)
			if err != nil {
				return err
			}
			out, err := a.cfg.Dump(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", MsgFlagConfigFormat)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			say(cmd, MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			return GenCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}
