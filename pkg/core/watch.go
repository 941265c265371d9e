package core

import (
	"context"
	"time"

	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/watch"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Options
	// Debounce is the quiet period before a re-run; zero uses the watcher
	// default.
	Debounce time.Duration
	// Ignore adds doublestar patterns, relative to the repository, that do
	// not trigger a run.
	Ignore []string
}

// Watch links once, then again every time something under the repository
// changes, until ctx is cancelled. Every run, including ones rejected by a
// configuration error, is handed to onRun so a broken edit can be fixed
// without restarting. Only an unreadable configuration at startup or a
// watcher failure is returned.
func Watch(ctx context.Context, opts WatchOptions, onRun func(*Report, error)) error {
	s, err := openSession(opts.Options)
	if err != nil {
		return err
	}
	root := s.paths.DotfilesRoot()
	logger := logging.GetLogger("core.watch")

	linkOnce := func(ctx context.Context) error {
		report, err := Link(ctx, opts.Options)
		if onRun != nil {
			onRun(report, err)
		}
		return err
	}

	w, err := watch.New(watch.Config{
		Dir:      root,
		Ignore:   opts.Ignore,
		Debounce: opts.Debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info().Strs("changed", changed).Msg("Re-linking")
			return linkOnce(ctx)
		},
	})
	if err != nil {
		return err
	}

	// The watcher is registered before the first run so edits made while
	// it links are not missed.
	_ = linkOnce(ctx)
	logger.Info().Str("dotfiles_dir", root).Msg("Watching for changes")
	return w.Run(ctx)
}
