package reconcile

import "github.com/arthur-debert/dotlink/pkg/registry"

// Status is the terminal state a dot reaches in one run.
type Status string

const (
	StatusLinked   Status = "linked"
	StatusRendered Status = "rendered"
	StatusRemoved  Status = "removed"
	StatusSkipped  Status = "skipped"
)

// Action is the filesystem change made (or planned) for a dot.
type Action string

const (
	ActionNone        Action = "none"
	ActionCreateLink  Action = "create-link"
	ActionReplaceLink Action = "replace-link"
	ActionWrite       Action = "write"
	ActionRemove      Action = "remove"
)

// Outcome records what happened to one dot.
type Outcome struct {
	Dot    registry.Dot `json:"dot"`
	Source string       `json:"source"`
	Target string       `json:"target"`
	State  State        `json:"state"`
	Status Status       `json:"status"`
	Action Action       `json:"action"`
	// Files lists the paths written or removed, more than one for
	// directory sources.
	Files    []string `json:"files,omitempty"`
	Planned  bool     `json:"planned,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Err      error    `json:"-"`
}

// Failed reports whether the dot ended with an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Changed reports whether the filesystem was (or would be) modified.
func (o Outcome) Changed() bool {
	return o.Action != ActionNone
}

func (o *Outcome) skip(err error) Outcome {
	o.Status = StatusSkipped
	o.Action = ActionNone
	o.Files = nil
	o.Err = err
	return *o
}
