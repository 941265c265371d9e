// Package watch re-runs a callback when files under the dotfiles repository
// change.
//
// Events are coalesced over a debounce window so an editor's write-then-rename
// produces a single run. Runs never overlap: a trigger that fires while a run
// is still going is rescheduled for another window, keeping the changed paths.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// defaultIgnores are never watched: VCS metadata, editor swap files and the
// temporary files written while replacing targets.
var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/*.dotlink-tmp",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Dir is the directory tree to watch.
	Dir string
	// Ignore adds doublestar patterns, relative to Dir, to the defaults.
	Ignore []string
	// Debounce is the quiet period after the last event. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	// OnChange receives the sorted, deduplicated paths (relative to Dir)
	// that changed since the previous run.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors a directory tree. Run must be called once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	ignores  []string
	debounce time.Duration
	dir      string
	logger   zerolog.Logger
}

// New validates the configuration and registers every non-ignored
// directory under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New(errors.ErrInvalidInput, "watch directory is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", cfg.Dir)
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrConfigInvalid, "invalid ignore pattern %q", pattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(append([]string{}, defaultIgnores...), cfg.Ignore...),
		debounce: debounce,
		dir:      dir,
		logger:   logging.GetLogger("watch"),
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It waits for a run in
// progress to finish before returning nil. Fatal watcher errors are
// returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("failed to close file watcher")
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	stopTimer(timer)
	defer timer.Stop()

	done := make(chan struct{})
	running := false
	wait := func() {
		if running {
			<-done
		}
	}

	for {
		select {
		case <-ctx.Done():
			wait()
			return nil

		case <-done:
			running = false

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			if running {
				w.logger.Debug().Msg("run in progress, rescheduling")
				timer.Reset(w.debounce)
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			running = true
			go func() {
				defer func() { done <- struct{}{} }()
				w.fire(ctx, changed)
			}()

		case evt, ok := <-w.fsw.Events:
			if !ok {
				wait()
				return errors.New(errors.ErrInternal, "file watcher event channel closed")
			}
			rel, err := filepath.Rel(w.dir, evt.Name)
			if err != nil || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			w.logger.Trace().Str("path", rel).Str("op", evt.Op.String()).Msg("event")
			pending[filepath.ToSlash(rel)] = struct{}{}
			stopTimer(timer)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				wait()
				return errors.New(errors.ErrInternal, "file watcher error channel closed")
			}
			if isFatalFsnotifyError(err) {
				wait()
				return errors.Wrap(err, errors.ErrInternal, "file watcher failed")
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) fire(ctx context.Context, changed []string) {
	if ctx.Err() != nil || w.cfg.OnChange == nil {
		return
	}
	w.logger.Info().Strs("changed", changed).Msg("change detected")
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error().Err(err).Msg("run after change failed")
	}
}

// addDirectories walks Dir and watches every directory that is not
// ignored. Unreadable directories are skipped with a warning.
func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn().Err(walkErr).Str("path", path).Msg("skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.dir, path)
		if err != nil {
			return nil
		}
		if rel != "." && w.isIgnored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", path)
		}
		return nil
	})
	return err
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || w.isIgnored(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("failed to watch new directory")
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pattern := range w.ignores {
		if ok, _ := doublestar.Match(pattern, normalized); ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return append([]string{}, defaultIgnores...)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
