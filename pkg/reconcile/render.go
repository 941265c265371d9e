package reconcile

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/template"
	"github.com/bmatcuk/doublestar/v4"
)

// renderedFile is one file of a render dot, rendered but not yet written.
type renderedFile struct {
	rel  string
	data []byte
	perm fs.FileMode
}

func (r *Reconciler) renderSource(source, rel string) ([]byte, error) {
	data, err := r.fs.ReadFile(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", rel)
	}
	rendered, err := template.Render(data, r.vars)
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "failed to render %s", rel)
	}
	return rendered, nil
}

func (r *Reconciler) renderFile(out *Outcome, obs Observation, perm fs.FileMode) Outcome {
	rendered, err := r.renderSource(out.Source, out.Dot.Source)
	if err != nil {
		return out.skip(err)
	}
	out.Status = StatusRendered

	switch obs.State {
	case StateDirectory:
		return out.skip(protected(out.Target, obs))
	case StateRegularFile:
		if current, err := r.fs.ReadFile(out.Target); err == nil && bytes.Equal(current, rendered) {
			return *out
		}
	}

	out.Action = ActionWrite
	out.Files = []string{out.Target}
	if r.opts.DryRun {
		return *out
	}
	if err := r.writeFile(out.Target, rendered, perm); err != nil {
		return out.skip(err)
	}
	return *out
}

// renderDir renders every file below a source directory into the mirrored
// target tree. Nothing is written unless every file renders.
func (r *Reconciler) renderDir(out *Outcome, obs Observation) Outcome {
	files, err := r.collect(out.Source, out.Dot.Ignore)
	if err != nil {
		return out.skip(err)
	}

	rendered := make([]renderedFile, 0, len(files))
	for _, f := range files {
		data, err := r.renderSource(filepath.Join(out.Source, f.rel), path.Join(out.Dot.Source, f.rel))
		if err != nil {
			return out.skip(err)
		}
		f.data = data
		rendered = append(rendered, f)
	}
	out.Status = StatusRendered

	// A link at the target would make the per-file checks below look
	// through it into the repository, so it goes first.
	removeTarget := false
	switch obs.State {
	case StateLinkedToSource, StateLinkedIntoRepo:
		removeTarget = true
	case StateLinkedElsewhere, StateRegularFile:
		if !r.opts.Force {
			return out.skip(protected(out.Target, obs))
		}
		removeTarget = true
		out.Warnings = append(out.Warnings, "replaced "+obs.State.String()+" at "+out.Target+" (forced)")
	}

	var writes []renderedFile
	for _, f := range rendered {
		dest := filepath.Join(out.Target, filepath.FromSlash(f.rel))
		if !removeTarget && obs.State == StateDirectory {
			destObs, err := Inspect(r.fs, r.paths, dest, "")
			if err != nil {
				return out.skip(err)
			}
			if destObs.State == StateDirectory || (destObs.State == StateLinkedElsewhere && !r.opts.Force) {
				return out.skip(protected(dest, destObs))
			}
			if destObs.State == StateRegularFile {
				if current, err := r.fs.ReadFile(dest); err == nil && bytes.Equal(current, f.data) {
					continue
				}
			}
		}
		writes = append(writes, f)
		out.Files = append(out.Files, dest)
	}

	if removeTarget || len(writes) > 0 {
		out.Action = ActionWrite
	}
	if r.opts.DryRun || out.Action == ActionNone {
		return *out
	}

	if removeTarget {
		if err := r.fs.Remove(out.Target); err != nil {
			return out.skip(errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", out.Target))
		}
	}
	if err := r.fs.MkdirAll(out.Target, 0755); err != nil {
		return out.skip(errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", out.Target))
	}
	for _, f := range writes {
		if err := r.writeFile(filepath.Join(out.Target, filepath.FromSlash(f.rel)), f.data, f.perm); err != nil {
			return out.skip(err)
		}
	}
	return *out
}

// collect lists the regular files below root in walk order, as slash
// separated relative paths, leaving out anything an ignore glob matches.
func (r *Reconciler) collect(root string, ignore []string) ([]renderedFile, error) {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrConfigInvalid, "invalid ignore pattern %q", pattern)
		}
	}

	var files []renderedFile
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := r.fs.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", rel)
		}
		for _, entry := range entries {
			child := path.Join(rel, entry.Name())
			if ignored(ignore, child) {
				continue
			}
			info, err := r.fs.Stat(filepath.Join(root, filepath.FromSlash(child)))
			if err != nil {
				if os.IsNotExist(err) {
					// dangling link inside the source tree
					continue
				}
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", child)
			}
			switch {
			case info.IsDir():
				if err := walk(child); err != nil {
					return err
				}
			case info.Mode().IsRegular():
				files = append(files, renderedFile{rel: child, perm: info.Mode().Perm()})
			}
		}
		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}
	return files, nil
}

// ignored matches a pattern against the whole relative path and against the
// base name, so "*.bak" works at any depth.
func ignored(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
