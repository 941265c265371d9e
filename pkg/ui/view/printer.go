package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/core"
)

// Style names a semantic role of a piece of text.
type Style string

const (
	StyleHeader  Style = "Header"
	StyleSuccess Style = "Success"
	StyleError   Style = "Error"
	StyleWarning Style = "Warning"
	StyleMuted   Style = "Muted"
	StyleName    Style = "DotName"
	StylePath    Style = "FilePath"
	StyleCode    Style = "Code"
	StyleDryRun  Style = "DryRunBanner"
)

// Painter decorates text for a style.
type Painter func(style Style, text string) string

// Plain leaves text untouched.
func Plain(_ Style, text string) string {
	return text
}

// Printer writes results as human readable lines.
type Printer struct {
	w     io.Writer
	paint Painter
	err   error
}

// NewPrinter returns a printer writing to w. A nil painter means Plain.
func NewPrinter(w io.Writer, paint Painter) *Printer {
	if paint == nil {
		paint = Plain
	}
	return &Printer{w: w, paint: paint}
}

// Print writes any supported result. Unknown values are printed with %+v.
func (p *Printer) Print(result interface{}) error {
	switch v := result.(type) {
	case *core.Report:
		p.report(FromReport(v))
	case *core.VarsResult:
		p.vars(FromVars(v))
	case []core.ProfileInfo:
		p.profiles(FromProfiles(v))
	case string:
		p.line(v)
	default:
		p.line(fmt.Sprintf("%+v", result))
	}
	return p.flush()
}

// Error writes an error and its details.
func (p *Printer) Error(err error) error {
	e := FromError(err)
	p.line(p.paint(StyleError, "Error:") + " " + e.Error)
	for _, k := range sortedKeys(e.Details) {
		p.line("  " + p.paint(StyleMuted, k+":") + " " + fmt.Sprint(e.Details[k]))
	}
	return p.flush()
}

// Message writes a single notice.
func (p *Printer) Message(msg string) error {
	p.line(msg)
	return p.flush()
}

func (p *Printer) report(r Report) {
	header := p.paint(StyleHeader, r.Command)
	if r.DryRun {
		header += " " + p.paint(StyleDryRun, "dry run")
	}
	profiles := "base"
	if len(r.Profiles) > 0 {
		profiles = "base, " + strings.Join(r.Profiles, ", ")
	}
	p.line(header + " " + p.paint(StyleMuted, "profiles: "+profiles))

	for _, w := range r.Warnings {
		p.line(p.paint(StyleWarning, "warning: ") + w)
	}
	p.hooks("", r.PreHooks)

	if len(r.Dots) == 0 {
		p.line(p.paint(StyleMuted, "  no dots"))
	}
	for _, d := range r.Dots {
		p.dot(d)
	}

	if len(r.Pruned) > 0 {
		p.line(p.paint(StyleHeader, "pruned"))
		for _, d := range r.Pruned {
			p.dot(d)
		}
	}
	p.hooks("", r.PostHooks)

	s := r.Summary
	summary := fmt.Sprintf("%d dots, %d changed, %d failed", s.Dots, s.Changed, s.Failed)
	if s.HookFailures > 0 {
		summary += fmt.Sprintf(", %d hook failures", s.HookFailures)
	}
	style := StyleSuccess
	if s.Failed > 0 || s.HookFailures > 0 {
		style = StyleError
	}
	p.line(p.paint(style, summary))
}

func (p *Printer) dot(d Dot) {
	status := p.paint(statusStyle(d), fmt.Sprintf("%-8s", d.Status))
	line := fmt.Sprintf("  %s %s %s", p.paint(StyleName, fmt.Sprintf("%-16s", d.Name)), status, p.paint(StylePath, d.Target))
	if d.Changed {
		line += " " + p.paint(StyleMuted, "("+d.Action+")")
	}
	p.line(line)

	if len(d.Files) > 1 {
		for _, f := range d.Files {
			p.line("      " + p.paint(StylePath, f))
		}
	}
	for _, w := range d.Warnings {
		p.line("    " + p.paint(StyleWarning, "warning: ") + w)
	}
	if d.Error != "" {
		p.line("    " + p.paint(StyleError, "error: ") + d.Error)
	}
	p.hooks("    ", d.Hooks)
}

func (p *Printer) hooks(indent string, hooks []Hook) {
	for _, h := range hooks {
		label := "hook"
		if h.Phase != "" && h.Phase != "dot" {
			label = h.Phase + "hook"
		}
		cmd := p.paint(StyleCode, h.Command)
		switch {
		case h.Skipped:
			p.line(indent + p.paint(StyleMuted, label+" skipped: ") + cmd)
		case h.Error != "":
			p.line(indent + p.paint(StyleError, label+" failed: ") + cmd + " " + p.paint(StyleMuted, h.Error))
		default:
			p.line(indent + p.paint(StyleSuccess, label+" ok: ") + cmd)
		}
	}
}

func (p *Printer) vars(v Vars) {
	if len(v.Variables) == 0 {
		p.line(p.paint(StyleMuted, "no variables"))
		return
	}
	width := 0
	for _, e := range v.Variables {
		if len(e.Path) > width {
			width = len(e.Path)
		}
	}
	for _, e := range v.Variables {
		p.line(fmt.Sprintf("%s = %s  %s",
			p.paint(StyleName, fmt.Sprintf("%-*s", width, e.Path)),
			e.Value,
			p.paint(StyleMuted, "("+e.Origin+")")))
	}
}

func (p *Printer) profiles(profiles []Profile) {
	for _, pr := range profiles {
		line := fmt.Sprintf("%s %s", p.paint(StyleName, fmt.Sprintf("%-16s", pr.Name)), p.paint(StyleMuted, fmt.Sprintf("%d dots", pr.Dots)))
		if len(pr.Imports) > 0 {
			line += "  imports: " + strings.Join(pr.Imports, ", ")
		}
		p.line(line)
		if len(pr.Expanded) > 1 {
			p.line("  " + p.paint(StyleMuted, "expands to: "+strings.Join(pr.Expanded, ", ")))
		}
	}
}

func statusStyle(d Dot) Style {
	switch {
	case d.Error != "":
		return StyleError
	case d.Status == "skipped" || len(d.Warnings) > 0:
		return StyleWarning
	case d.Changed:
		return StyleSuccess
	default:
		return StyleMuted
	}
}

// line buffers the first write error so layout code stays linear.
func (p *Printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *Printer) flush() error {
	err := p.err
	p.err = nil
	return err
}
