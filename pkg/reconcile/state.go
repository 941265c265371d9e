package reconcile

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/paths"
)

// State is the observed condition of a target path.
type State int

const (
	StateAbsent State = iota
	StateLinkedToSource
	StateLinkedIntoRepo
	StateLinkedElsewhere
	StateRegularFile
	StateDirectory
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLinkedToSource:
		return "linked"
	case StateLinkedIntoRepo:
		return "linked into repository"
	case StateLinkedElsewhere:
		return "linked elsewhere"
	case StateRegularFile:
		return "regular file"
	case StateDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// MarshalText lets reports carry the readable name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Observation is what Inspect found at a target.
type Observation struct {
	State State
	// LinkDest is the absolute destination when the target is a symlink.
	LinkDest string
	Mode     fs.FileMode
}

// Managed reports whether the target is something dotlink may replace
// without being forced.
func (o Observation) Managed() bool {
	return o.State == StateAbsent || o.State == StateLinkedToSource || o.State == StateLinkedIntoRepo
}

// Inspect classifies target relative to source. Only the target itself is
// examined, never what a link points at, so dangling links are links.
func Inspect(fsys filesystem.FS, p *paths.Paths, target, source string) (Observation, error) {
	info, err := fsys.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return Observation{State: StateAbsent}, nil
		}
		return Observation{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", target)
	}

	obs := Observation{Mode: info.Mode()}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		raw, err := fsys.Readlink(target)
		if err != nil {
			return Observation{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", target)
		}
		obs.LinkDest = paths.ResolveLink(target, raw)
		switch {
		case obs.LinkDest == filepath.Clean(source):
			obs.State = StateLinkedToSource
		case p.IsInDotfiles(obs.LinkDest):
			obs.State = StateLinkedIntoRepo
		default:
			obs.State = StateLinkedElsewhere
		}
	case info.IsDir():
		obs.State = StateDirectory
	default:
		obs.State = StateRegularFile
	}
	return obs, nil
}
