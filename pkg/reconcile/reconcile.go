package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/arthur-debert/dotlink/pkg/registry"
	"github.com/arthur-debert/dotlink/pkg/template"
	"github.com/rs/zerolog"
)

// tmpSuffix marks the sibling files used for atomic replacement.
const tmpSuffix = ".dotlink-tmp"

// Options tune how changes are applied.
type Options struct {
	// DryRun computes every decision without touching the filesystem.
	DryRun bool
	// Force allows replacing regular files and foreign links.
	Force bool
}

// Reconciler applies dots one at a time. It holds no state between calls.
type Reconciler struct {
	fs     filesystem.FS
	paths  *paths.Paths
	vars   template.Resolver
	opts   Options
	logger zerolog.Logger
}

// New creates a reconciler. vars resolves the directives of render dots.
func New(fsys filesystem.FS, p *paths.Paths, vars template.Resolver, opts Options) *Reconciler {
	return &Reconciler{
		fs:     fsys,
		paths:  p,
		vars:   vars,
		opts:   opts,
		logger: logging.GetLogger("reconcile"),
	}
}

// Apply brings one dot's target in line with its declaration. Errors never
// escape: they end the dot in StatusSkipped with Err set.
func (r *Reconciler) Apply(dot registry.Dot) Outcome {
	out, srcInfo, obs, err := r.prepare(dot)
	if err != nil {
		return out.skip(err)
	}

	logger := r.logger.With().
		Str("dot", dot.Label()).
		Str("target", out.Target).
		Str("state", obs.State.String()).
		Logger()

	var result Outcome
	switch {
	case dot.Render && srcInfo.IsDir():
		result = r.renderDir(&out, obs)
	case dot.Render:
		result = r.renderFile(&out, obs, srcInfo.Mode().Perm())
	default:
		result = r.link(&out, obs)
	}

	event := logger.Debug()
	if result.Failed() {
		event = logger.Warn().Err(result.Err)
	} else if result.Changed() {
		event = logger.Info()
	}
	event.
		Str("status", string(result.Status)).
		Str("action", string(result.Action)).
		Bool("dry_run", r.opts.DryRun).
		Msg("Dot reconciled")

	return result
}

// prepare resolves the dot's paths, checks the source and inspects the target.
func (r *Reconciler) prepare(dot registry.Dot) (Outcome, os.FileInfo, Observation, error) {
	out := Outcome{
		Dot:     dot,
		Target:  r.paths.Target(dot.Target),
		Action:  ActionNone,
		Planned: r.opts.DryRun,
	}

	source, err := r.paths.Source(dot.Source)
	if err != nil {
		return out, nil, Observation{}, err
	}
	out.Source = source

	srcInfo, err := r.fs.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil, Observation{}, errors.Newf(errors.ErrSourceNotFound, "source %s does not exist", dot.Source).
				WithDetail("source", source)
		}
		return out, nil, Observation{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat source %s", dot.Source)
	}

	obs, err := Inspect(r.fs, r.paths, out.Target, source)
	if err != nil {
		return out, srcInfo, obs, err
	}
	out.State = obs.State
	return out, srcInfo, obs, nil
}

func (r *Reconciler) link(out *Outcome, obs Observation) Outcome {
	out.Status = StatusLinked

	switch obs.State {
	case StateLinkedToSource:
		return *out
	case StateAbsent:
		out.Action = ActionCreateLink
	case StateLinkedIntoRepo:
		out.Action = ActionReplaceLink
	case StateDirectory:
		return out.skip(protected(out.Target, obs))
	default:
		if !r.opts.Force {
			return out.skip(protected(out.Target, obs))
		}
		out.Action = ActionReplaceLink
		out.Warnings = append(out.Warnings, fmt.Sprintf("replaced %s at %s (forced)", obs.State, out.Target))
	}
	out.Files = []string{out.Target}

	if r.opts.DryRun {
		return *out
	}
	if err := r.ensureParent(out.Target); err != nil {
		return out.skip(err)
	}

	tmp := tmpPath(out.Target)
	if err := r.clearTmp(tmp); err != nil {
		return out.skip(err)
	}
	if obs.State == StateAbsent {
		if err := r.fs.Symlink(out.Source, out.Target); err != nil {
			return out.skip(errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", out.Target))
		}
		return *out
	}

	// Replace through a renamed sibling so the target never disappears.
	if err := r.fs.Symlink(out.Source, tmp); err != nil {
		return out.skip(errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", out.Target))
	}
	if err := r.fs.Rename(tmp, out.Target); err != nil {
		_ = r.fs.Remove(tmp)
		return out.skip(errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to replace %s", out.Target))
	}
	return *out
}

func (r *Reconciler) ensureParent(target string) error {
	dir := filepath.Dir(target)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	return nil
}

// writeFile replaces target atomically with data.
func (r *Reconciler) writeFile(target string, data []byte, perm os.FileMode) error {
	if err := r.ensureParent(target); err != nil {
		return err
	}
	tmp := tmpPath(target)
	if err := r.clearTmp(tmp); err != nil {
		return err
	}
	if err := r.fs.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := r.fs.Rename(tmp, target); err != nil {
		_ = r.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", target)
	}
	return nil
}

// clearTmp removes a sibling left behind by an interrupted run. It may be a
// link into the repository, which WriteFile would follow.
func (r *Reconciler) clearTmp(tmp string) error {
	if _, err := r.fs.Lstat(tmp); err != nil {
		return nil
	}
	if err := r.fs.Remove(tmp); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to clear %s", tmp)
	}
	return nil
}

func tmpPath(target string) string {
	return filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+tmpSuffix)
}

func protected(target string, obs Observation) error {
	var err *errors.DotlinkError
	switch obs.State {
	case StateDirectory:
		err = errors.Newf(errors.ErrProtectedPath, "%s is a directory; directories are never replaced", target)
	case StateLinkedElsewhere:
		err = errors.Newf(errors.ErrProtectedPath, "%s links to %s, outside the dotfiles root (use --force to replace)", target, obs.LinkDest).
			WithDetail("link_dest", obs.LinkDest)
	default:
		err = errors.Newf(errors.ErrProtectedPath, "%s is a %s not created by dotlink (use --force to replace)", target, obs.State)
	}
	return err.WithDetail("target", target).WithDetail("state", obs.State.String())
}
