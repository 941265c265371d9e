package filesystem

import (
	"io/fs"
	"sync"
)

// Mutation describes one state-changing call made through a Recording FS.
type Mutation struct {
	Op   string
	Path string
}

// Recording wraps an FS and records every mutating call. Reads pass through
// untouched. It backs the idempotence checks: a second reconciliation of an
// unchanged configuration must record nothing.
type Recording struct {
	FS

	mu        sync.Mutex
	mutations []Mutation
}

// NewRecording wraps inner.
func NewRecording(inner FS) *Recording {
	return &Recording{FS: inner}
}

func (r *Recording) record(op, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, Mutation{Op: op, Path: path})
}

// Mutations returns a copy of the recorded calls.
func (r *Recording) Mutations() []Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Mutation, len(r.mutations))
	copy(out, r.mutations)
	return out
}

// Reset forgets all recorded calls.
func (r *Recording) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = nil
}

func (r *Recording) WriteFile(name string, data []byte, perm fs.FileMode) error {
	r.record("write", name)
	return r.FS.WriteFile(name, data, perm)
}

func (r *Recording) Rename(oldpath, newpath string) error {
	r.record("rename", newpath)
	return r.FS.Rename(oldpath, newpath)
}

func (r *Recording) MkdirAll(path string, perm fs.FileMode) error {
	// MkdirAll on an existing directory is not a change.
	if info, err := r.FS.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	r.record("mkdir", path)
	return r.FS.MkdirAll(path, perm)
}

func (r *Recording) Symlink(oldname, newname string) error {
	r.record("symlink", newname)
	return r.FS.Symlink(oldname, newname)
}

func (r *Recording) Remove(name string) error {
	r.record("remove", name)
	return r.FS.Remove(name)
}
