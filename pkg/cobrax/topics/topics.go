// Package topics adds free-form help topics to a Cobra command tree.
// Topics are files in an fs.FS, usually an embedded directory, and are shown
// by "<app> help <topic>" next to the regular command help.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// TopicManager manages help topics for a Cobra application
type TopicManager struct {
	fsys         fs.FS
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	extensions   []string
	renderer     Renderer
}

// Topic represents a help topic
type Topic struct {
	Name    string
	Path    string
	Content string
	// Summary is the first non-empty line without markdown heading marks.
	Summary string
}

// Options configures the TopicManager
type Options struct {
	// Extensions defaults to [".txt", ".md"].
	Extensions []string
	// Renderer defaults to PlainRenderer.
	Renderer Renderer
}

// New creates a TopicManager over fsys with custom options
func New(fsys fs.FS, opts Options) *TopicManager {
	tm := &TopicManager{
		fsys:       fsys,
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(tm.extensions) == 0 {
		tm.extensions = []string{".txt", ".md"}
	}
	if tm.renderer == nil {
		tm.renderer = &PlainRenderer{}
	}
	return tm
}

func (tm *TopicManager) scanTopics() error {
	return fs.WalkDir(tm.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		if !tm.supported(ext) {
			return nil
		}

		content, err := fs.ReadFile(tm.fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		tm.topics[name] = &Topic{
			Name:    name,
			Path:    p,
			Content: string(content),
			Summary: summary(string(content)),
		}
		return nil
	})
}

func (tm *TopicManager) supported(ext string) bool {
	for _, valid := range tm.extensions {
		if ext == valid {
			return true
		}
	}
	return false
}

func summary(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			return line
		}
	}
	return ""
}

// GetTopic retrieves a topic by name
func (tm *TopicManager) GetTopic(name string) (*Topic, bool) {
	topic, ok := tm.topics[strings.TrimLeft(name, "-")]
	return topic, ok
}

// ListTopics returns all topic names, sorted
func (tm *TopicManager) ListTopics() []string {
	names := make([]string, 0, len(tm.topics))
	for name := range tm.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Show writes a rendered topic.
func (tm *TopicManager) Show(w io.Writer, topic *Topic) error {
	_, err := fmt.Fprint(w, tm.renderer.Render(topic.Content, path.Ext(topic.Path)))
	return err
}

func (tm *TopicManager) list(w io.Writer, app string) {
	names := tm.ListTopics()
	if len(names) == 0 {
		fmt.Fprintln(w, "No help topics available.")
		return
	}
	fmt.Fprintln(w, "Available help topics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, tm.topics[name].Summary)
	}
	fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", app)
}

// Initialize scans fsys and installs a help command that knows about the
// topics. It returns the manager for callers that want to show topics
// elsewhere.
func Initialize(rootCmd *cobra.Command, fsys fs.FS, opts Options) (*TopicManager, error) {
	tm := New(fsys, opts)
	if err := tm.scanTopics(); err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	tm.originalHelp = rootCmd.HelpFunc()
	app := rootCmd.Name()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic in the application.
Simply type ` + app + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + app + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, tm.ListTopics()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tm.originalHelp(rootCmd, args)
				return nil
			}
			if args[0] == "topics" {
				tm.list(out, app)
				return nil
			}
			if topic, ok := tm.GetTopic(args[0]); ok {
				return tm.Show(out, topic)
			}

			target, _, err := rootCmd.Find(args)
			if target == nil || err != nil {
				return fmt.Errorf("unknown help topic %q", strings.Join(args, " "))
			}
			target.InitDefaultHelpFlag()
			return target.Help()
		},
	}

	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" {
			rootCmd.RemoveCommand(c)
			break
		}
	}
	rootCmd.SetHelpCommand(helpCmd)
	return tm, nil
}
