package reconcile

import (
	"bytes"
	"path"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/registry"
)

// Unlink removes what Apply would have deployed for dot: a link into the
// repository, or rendered files whose content still equals the current
// render. Anything else is left in place with a warning.
func (r *Reconciler) Unlink(dot registry.Dot) Outcome {
	out := Outcome{
		Dot:     dot,
		Target:  r.paths.Target(dot.Target),
		Status:  StatusRemoved,
		Action:  ActionNone,
		Planned: r.opts.DryRun,
	}
	source, err := r.paths.Source(dot.Source)
	if err != nil {
		return out.skip(err)
	}
	out.Source = source

	obs, err := Inspect(r.fs, r.paths, out.Target, source)
	if err != nil {
		return out.skip(err)
	}
	out.State = obs.State

	switch obs.State {
	case StateAbsent:
		return out
	case StateLinkedToSource, StateLinkedIntoRepo:
		return r.remove(&out, out.Target)
	case StateRegularFile:
		if dot.Render {
			rendered, err := r.renderSource(source, dot.Source)
			if err != nil {
				return out.skip(err)
			}
			if current, err := r.fs.ReadFile(out.Target); err == nil && bytes.Equal(current, rendered) {
				return r.remove(&out, out.Target)
			}
			return r.leave(&out, "content differs from the current render")
		}
	case StateDirectory:
		if dot.Render {
			return r.unlinkDir(&out)
		}
	}
	return r.leave(&out, obs.State.String()+" was not created by dotlink")
}

func (r *Reconciler) unlinkDir(out *Outcome) Outcome {
	files, err := r.collect(out.Source, out.Dot.Ignore)
	if err != nil {
		return out.skip(err)
	}
	var kept int
	for _, f := range files {
		dest := filepath.Join(out.Target, filepath.FromSlash(f.rel))
		rendered, err := r.renderSource(filepath.Join(out.Source, filepath.FromSlash(f.rel)), path.Join(out.Dot.Source, f.rel))
		if err != nil {
			return out.skip(err)
		}
		obs, err := Inspect(r.fs, r.paths, dest, "")
		if err != nil {
			return out.skip(err)
		}
		if obs.State != StateRegularFile {
			continue
		}
		current, err := r.fs.ReadFile(dest)
		if err != nil || !bytes.Equal(current, rendered) {
			kept++
			continue
		}
		out.Files = append(out.Files, dest)
	}
	if kept > 0 {
		out.Warnings = append(out.Warnings, "left modified files in "+out.Target)
	}
	if len(out.Files) == 0 {
		return *out
	}
	out.Action = ActionRemove
	if r.opts.DryRun {
		return *out
	}
	for _, f := range out.Files {
		if err := r.fs.Remove(f); err != nil {
			return out.skip(errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", f))
		}
	}
	return *out
}

// Prune removes the target of a dot that is no longer active, but only
// when it is a link into the repository.
func (r *Reconciler) Prune(dot registry.Dot) Outcome {
	out := Outcome{
		Dot:     dot,
		Target:  r.paths.Target(dot.Target),
		Status:  StatusSkipped,
		Action:  ActionNone,
		Planned: r.opts.DryRun,
	}
	if out.Target == "" {
		return out
	}
	source, _ := r.paths.Source(dot.Source)
	out.Source = source

	obs, err := Inspect(r.fs, r.paths, out.Target, source)
	if err != nil {
		return out.skip(err)
	}
	out.State = obs.State
	if obs.State != StateLinkedToSource && obs.State != StateLinkedIntoRepo {
		return out
	}
	out.Status = StatusRemoved
	return r.remove(&out, out.Target)
}

func (r *Reconciler) remove(out *Outcome, target string) Outcome {
	out.Action = ActionRemove
	out.Files = []string{target}
	if r.opts.DryRun {
		return *out
	}
	if err := r.fs.Remove(target); err != nil {
		return out.skip(errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", target))
	}
	r.logger.Info().Str("dot", out.Dot.Label()).Str("target", target).Msg("Removed")
	return *out
}

func (r *Reconciler) leave(out *Outcome, reason string) Outcome {
	out.Status = StatusSkipped
	out.Warnings = append(out.Warnings, "left "+out.Target+" in place: "+reason)
	return *out
}
