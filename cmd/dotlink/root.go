package dotlink

import (
	"embed"
	"io"
	"io/fs"

	"github.com/arthur-debert/dotlink/internal/version"
	"github.com/arthur-debert/dotlink/pkg/cobrax/topics"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// globals holds the persistent flags shared by every command.
type globals struct {
	verbosity   int
	configPath  string
	dotfilesDir string
	format      string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globals{})
}

func newRootCmd(g *globals) *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "dotlink",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLoggerWithWriter(g.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			if _, err := ui.ParseFormat(g.format); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&g.configPath, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&g.dotfilesDir, "dotfiles-dir", "d", "", MsgFlagDotfilesDir)
	flags.StringVar(&g.format, "format", "auto", MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "info", Title: "Inspect:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newLinkCmd(g))
	rootCmd.AddCommand(newUnlinkCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newStatusCmd(g))
	rootCmd.AddCommand(newVarsCmd(g))
	rootCmd.AddCommand(newProfilesCmd(g))
	rootCmd.AddCommand(newInitCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		opts := topics.Options{Extensions: []string{".md"}, Renderer: topics.NewGlamourRenderer()}
		if _, err := topics.Initialize(rootCmd, sub, opts); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// renderer builds the output renderer for the --format flag.
func (g *globals) renderer(w io.Writer) ui.Renderer {
	format, err := ui.ParseFormat(g.format)
	if err != nil {
		format = ui.FormatAuto
	}
	r, err := ui.NewRenderer(format, w)
	if err != nil {
		r, _ = ui.NewRenderer(ui.FormatText, w)
	}
	return r
}

// Execute runs the command line and returns the process exit status.
// Errors are rendered in the selected format on stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	g := &globals{}
	rootCmd := newRootCmd(g)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if errors.IsErrorCode(err, errDotsFailed) {
		// already reported in full
		return 1
	}
	_ = g.renderer(stderr).RenderError(err)
	return 1
}
