package dotlink

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arthur-debert/dotlink/internal/version"
	"github.com/arthur-debert/dotlink/pkg/config"
	"github.com/arthur-debert/dotlink/pkg/core"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errDotsFailed marks a run whose report has already been printed but in
// which at least one dot failed.
const errDotsFailed errors.ErrorCode = "DOTS_FAILED"

// runFlags are the flags of commands that deploy.
type runFlags struct {
	dryRun      bool
	force       bool
	noHooks     bool
	prune       bool
	hookTimeout time.Duration
}

func (g *globals) options(cmd *cobra.Command, profiles []string) core.Options {
	opts := core.Options{
		ConfigPath:  g.configPath,
		DotfilesDir: g.dotfilesDir,
		Profiles:    profiles,
	}
	if g.verbosity > 0 {
		opts.HookStdout = cmd.ErrOrStderr()
		opts.HookStderr = cmd.ErrOrStderr()
	}
	return opts
}

func (f *runFlags) apply(opts *core.Options) {
	opts.DryRun = f.dryRun
	opts.Force = f.force
	opts.NoHooks = f.noHooks
	opts.Prune = f.prune
	opts.HookTimeout = f.hookTimeout
}

// report prints a run report and turns per-dot failures into the exit
// status.
func (g *globals) report(cmd *cobra.Command, report *core.Report) error {
	if err := g.renderer(cmd.OutOrStdout()).RenderResult(report); err != nil {
		return err
	}
	if report.Failed() {
		return errors.Newf(errDotsFailed, "%d dots failed", report.FailedDots())
	}
	return nil
}

// profileCompletion completes profile names from the configuration.
func (g *globals) profileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	infos, err := core.Profiles(g.options(cmd, nil))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	used := make(map[string]bool, len(args))
	for _, a := range args {
		used[a] = true
	}
	var names []string
	for _, info := range infos {
		if info.Name != "base" && !used[info.Name] {
			names = append(names, info.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func newLinkCmd(g *globals) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:               "link [profiles...]",
		Short:             MsgLinkShort,
		Long:              MsgLinkLong,
		Example:           MsgLinkExample,
		GroupID:           "core",
		ValidArgsFunction: g.profileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(cmd, args)
			f.apply(&opts)

			log.Info().Strs("profiles", args).Bool("dry_run", f.dryRun).Msg("Linking")
			report, err := core.Link(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return g.report(cmd, report)
		},
	}
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&f.noHooks, "no-hooks", false, MsgFlagNoHooks)
	cmd.Flags().BoolVar(&f.prune, "prune", false, MsgFlagPrune)
	cmd.Flags().DurationVar(&f.hookTimeout, "hook-timeout", 0, MsgFlagHookTimeout)
	return cmd
}

func newUnlinkCmd(g *globals) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:               "unlink [profiles...]",
		Short:             MsgUnlinkShort,
		Long:              MsgUnlinkLong,
		GroupID:           "core",
		ValidArgsFunction: g.profileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(cmd, args)
			opts.DryRun = dryRun
			report, err := core.Unlink(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return g.report(cmd, report)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:               "status [profiles...]",
		Short:             MsgStatusShort,
		Long:              MsgStatusLong,
		GroupID:           "info",
		ValidArgsFunction: g.profileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := core.Status(cmd.Context(), g.options(cmd, args))
			if err != nil {
				return err
			}
			return g.report(cmd, report)
		},
	}
}

func newVarsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:               "vars [profiles...]",
		Short:             MsgVarsShort,
		Long:              MsgVarsLong,
		GroupID:           "info",
		ValidArgsFunction: g.profileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := core.Vars(g.options(cmd, args))
			if err != nil {
				return err
			}
			return g.renderer(cmd.OutOrStdout()).RenderResult(result)
		},
	}
}

func newProfilesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Short:   MsgProfilesShort,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := core.Profiles(g.options(cmd, nil))
			if err != nil {
				return err
			}
			return g.renderer(cmd.OutOrStdout()).RenderResult(infos)
		},
	}
}

func newWatchCmd(g *globals) *cobra.Command {
	var (
		f        runFlags
		debounce time.Duration
		ignore   []string
	)
	cmd := &cobra.Command{
		Use:               "watch [profiles...]",
		Short:             MsgWatchShort,
		Long:              MsgWatchLong,
		GroupID:           "core",
		ValidArgsFunction: g.profileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(cmd, args)
			f.apply(&opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := g.renderer(cmd.OutOrStdout())
			onRun := func(report *core.Report, err error) {
				if err != nil {
					_ = g.renderer(cmd.ErrOrStderr()).RenderError(err)
					return
				}
				_ = r.RenderResult(report)
			}
			_ = r.RenderMessage(MsgWatching)
			return core.Watch(ctx, core.WatchOptions{Options: opts, Debounce: debounce, Ignore: ignore}, onRun)
		},
	}
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&f.noHooks, "no-hooks", false, MsgFlagNoHooks)
	cmd.Flags().BoolVar(&f.prune, "prune", false, MsgFlagPrune)
	cmd.Flags().DurationVar(&f.hookTimeout, "hook-timeout", 0, MsgFlagHookTimeout)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, MsgFlagDebounce)
	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, MsgFlagIgnore)
	return cmd
}

func newInitCmd(g *globals) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				path = paths.ConfigFile()
			}
			path = paths.ExpandHome(path)
			if err := config.WriteSample(path, overwrite); err != nil {
				return err
			}
			return g.renderer(cmd.OutOrStdout()).RenderMessage(fmt.Sprintf(MsgInitWritten, path))
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, MsgFlagOverwrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dotlink version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
