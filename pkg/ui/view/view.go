// Package view turns core results into flat, serializable display models
// and lays them out as lines of text. Renderers differ only in how they
// paint those lines.
package view

import (
	"sort"

	"github.com/arthur-debert/dotlink/pkg/core"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/hooks"
	"github.com/arthur-debert/dotlink/pkg/reconcile"
)

// Hook is one hook command as displayed.
type Hook struct {
	Command  string `json:"command"`
	Phase    string `json:"phase"`
	Dot      string `json:"dot,omitempty"`
	ExitCode int    `json:"exit_code"`
	Duration string `json:"duration"`
	Skipped  bool   `json:"skipped,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Dot is one dot outcome as displayed.
type Dot struct {
	Name     string   `json:"name"`
	Profile  string   `json:"profile"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Render   bool     `json:"render"`
	State    string   `json:"state"`
	Status   string   `json:"status"`
	Action   string   `json:"action"`
	Changed  bool     `json:"changed"`
	Files    []string `json:"files,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
	Code     string   `json:"code,omitempty"`
	Hooks    []Hook   `json:"hooks,omitempty"`
}

// Summary counts what a run did.
type Summary struct {
	Dots         int `json:"dots"`
	Changed      int `json:"changed"`
	Failed       int `json:"failed"`
	HookFailures int `json:"hook_failures"`
}

// Report is a run report as displayed.
type Report struct {
	RunID       string   `json:"run_id"`
	Command     string   `json:"command"`
	DotfilesDir string   `json:"dotfiles_dir"`
	Profiles    []string `json:"profiles"`
	DryRun      bool     `json:"dry_run"`
	PreHooks    []Hook   `json:"prehooks,omitempty"`
	Dots        []Dot    `json:"dots"`
	Pruned      []Dot    `json:"pruned,omitempty"`
	PostHooks   []Hook   `json:"posthooks,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Summary     Summary  `json:"summary"`
}

// Variable is one resolved variable.
type Variable struct {
	Path   string `json:"path"`
	Value  string `json:"value"`
	Origin string `json:"origin"`
}

// Vars is a resolved variable model.
type Vars struct {
	Profiles  []string   `json:"profiles"`
	Variables []Variable `json:"variables"`
}

// Profile is one declared profile.
type Profile struct {
	Name     string   `json:"name"`
	Imports  []string `json:"imports"`
	Expanded []string `json:"expanded"`
	Dots     int      `json:"dots"`
}

// Error is a failure as displayed.
type Error struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Message is a free-form notice.
type Message struct {
	Message string `json:"message"`
}

// FromReport converts a run report.
func FromReport(r *core.Report) Report {
	v := Report{
		RunID:       r.RunID,
		Command:     string(r.Command),
		DotfilesDir: r.DotfilesDir,
		Profiles:    nonNil(r.Profiles),
		DryRun:      r.DryRun,
		PreHooks:    fromHooks(r.PreHooks),
		PostHooks:   fromHooks(r.PostHooks),
		Warnings:    r.Warnings,
		Dots:        make([]Dot, 0, len(r.Dots)),
		Summary: Summary{
			Dots:         len(r.Dots),
			Changed:      r.Changes(),
			Failed:       r.FailedDots(),
			HookFailures: len(r.HookFailures()),
		},
	}
	for _, d := range r.Dots {
		dot := fromOutcome(d.Outcome)
		dot.Hooks = fromHooks(d.Hooks)
		v.Dots = append(v.Dots, dot)
	}
	for _, p := range r.Pruned {
		v.Pruned = append(v.Pruned, fromOutcome(p))
	}
	return v
}

// FromVars converts a resolved variable model.
func FromVars(r *core.VarsResult) Vars {
	v := Vars{Profiles: nonNil(r.Profiles), Variables: make([]Variable, 0, len(r.Entries))}
	for _, e := range r.Entries {
		v.Variables = append(v.Variables, Variable{Path: e.Path, Value: e.Value, Origin: e.Origin})
	}
	return v
}

// FromProfiles converts a profile listing.
func FromProfiles(infos []core.ProfileInfo) []Profile {
	out := make([]Profile, 0, len(infos))
	for _, p := range infos {
		out = append(out, Profile{
			Name:     p.Name,
			Imports:  nonNil(p.Imports),
			Expanded: nonNil(p.Expanded),
			Dots:     p.Dots,
		})
	}
	return out
}

// FromError converts an error, keeping its code and details.
func FromError(err error) Error {
	e := Error{Error: err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		e.Code = string(code)
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		e.Details = details
	}
	return e
}

func fromOutcome(o reconcile.Outcome) Dot {
	d := Dot{
		Name:     o.Dot.Label(),
		Profile:  o.Dot.Profile,
		Source:   o.Source,
		Target:   o.Target,
		Render:   o.Dot.Render,
		State:    o.State.String(),
		Status:   string(o.Status),
		Action:   string(o.Action),
		Changed:  o.Changed(),
		Files:    o.Files,
		Warnings: o.Warnings,
	}
	if o.Err != nil {
		d.Error = o.Err.Error()
		d.Code = string(errors.GetErrorCode(o.Err))
	}
	return d
}

func fromHooks(results []hooks.Result) []Hook {
	if len(results) == 0 {
		return nil
	}
	out := make([]Hook, 0, len(results))
	for _, r := range results {
		h := Hook{
			Command:  r.Command,
			Phase:    string(r.Phase),
			Dot:      r.Dot,
			ExitCode: r.ExitCode,
			Duration: r.Duration.String(),
			Skipped:  r.Skipped,
			Stdout:   r.Stdout,
			Stderr:   r.Stderr,
		}
		if r.Err != nil {
			h.Error = r.Err.Error()
			h.Code = string(errors.GetErrorCode(r.Err))
		}
		out = append(out, h)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
