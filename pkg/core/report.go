package core

import (
	"github.com/arthur-debert/dotlink/pkg/hooks"
	"github.com/arthur-debert/dotlink/pkg/reconcile"
)

// Command names a pipeline entry point.
type Command string

const (
	CommandLink   Command = "link"
	CommandUnlink Command = "unlink"
	CommandStatus Command = "status"
)

// DotResult is the outcome of one dot plus the hooks run after it.
type DotResult struct {
	reconcile.Outcome
	Hooks []hooks.Result `json:"hooks,omitempty"`
}

// Report is the full account of one run. Dots are in declaration order.
type Report struct {
	RunID       string              `json:"run_id"`
	Command     Command             `json:"command"`
	DotfilesDir string              `json:"dotfiles_dir"`
	Profiles    []string            `json:"profiles"`
	DryRun      bool                `json:"dry_run"`
	PreHooks    []hooks.Result      `json:"prehooks,omitempty"`
	Dots        []DotResult         `json:"dots"`
	Pruned      []reconcile.Outcome `json:"pruned,omitempty"`
	PostHooks   []hooks.Result      `json:"posthooks,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// Failed reports whether any dot or pruned target ended with an error.
// Hook failures do not count.
func (r *Report) Failed() bool {
	for _, d := range r.Dots {
		if d.Failed() {
			return true
		}
	}
	for _, p := range r.Pruned {
		if p.Failed() {
			return true
		}
	}
	return false
}

// FailedDots counts dots that ended with an error.
func (r *Report) FailedDots() int {
	n := 0
	for _, d := range r.Dots {
		if d.Failed() {
			n++
		}
	}
	return n
}

// Changes counts dots and pruned targets whose filesystem state changed
// (or would change, in a dry run).
func (r *Report) Changes() int {
	n := 0
	for _, d := range r.Dots {
		if d.Changed() {
			n++
		}
	}
	for _, p := range r.Pruned {
		if p.Changed() {
			n++
		}
	}
	return n
}

// HookFailures returns every failed hook of the run, in execution order.
func (r *Report) HookFailures() []hooks.Result {
	var failed []hooks.Result
	collect := func(results []hooks.Result) {
		for _, h := range results {
			if h.Failed() {
				failed = append(failed, h)
			}
		}
	}
	collect(r.PreHooks)
	for _, d := range r.Dots {
		collect(d.Hooks)
	}
	collect(r.PostHooks)
	return failed
}
