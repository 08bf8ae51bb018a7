// Package render turns resolved guidance into the text that cairn writes to
// stdout for the orchestrating agent to read.
//
// Two formats exist, selected by --format or the output.format config key:
//   - text: a flat, line-oriented block with literal DO:/NEXT: labels
//   - tags: the same content wrapped in nested pseudo-XML elements
//
// Both formats carry identical action lines and identical follow-up commands,
// so an orchestrator can switch formats without changing behavior. Rendering
// is pure string assembly: no clock, no randomness, no environment reads.
//
// Key types:
//   - [Guidance] - the unit a step resolution produces and a renderer consumes
//   - [Element] - a pseudo-XML node used by the tags format and embedded blocks
//   - [Mode] - the output format selector
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects the stdout format.
type Mode string

const (
	// ModeText is the flat line-oriented format.
	ModeText Mode = "text"
	// ModeTags is the pseudo-XML format.
	ModeTags Mode = "tags"
)

// ParseMode validates a --format value.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeText:
		return ModeText, nil
	case ModeTags:
		return ModeTags, nil
	}
	return "", errors.Errorf("unknown output format %q (valid: text, tags)", s)
}

// Header identifies the step being rendered.
type Header struct {
	// Script is the skill name as invoked.
	Script string
	// Step is the current 1-based step number.
	Step int
	// Total is the size of the skill's step table.
	Total int
}

// Guidance is one step's resolved output: what to do now and how to come back.
//
// Exactly one of the follow-up shapes applies:
//   - Complete: the workflow ends here
//   - PassNext/FailNext: the orchestrator re-invokes with a verdict
//   - Next: a single follow-up command
type Guidance struct {
	// Title is the step's short imperative heading.
	Title string

	// Actions are the instruction lines, in order. Entries may be plain
	// sentences or lines of an embedded block (dispatch, escalation).
	// Empty strings render as blank lines.
	Actions []string

	// Forbidden lists what the agent must not do during this step.
	Forbidden []string

	// Next is the single follow-up command, when the step routes linearly.
	Next string

	// PassNext and FailNext are the verdict-routed follow-up commands for
	// steps that land on a verification gate.
	PassNext string
	FailNext string

	// Complete marks the end of the workflow. No follow-up command renders.
	Complete bool
}

// Render produces the full stdout document for one invocation.
func Render(m Mode, h Header, g Guidance) string {
	if m == ModeTags {
		return Tags(h, g)
	}
	return Text(h, g)
}

// Text renders the flat format: a header line, a DO: block with the action
// lines verbatim, an optional FORBIDDEN: block, and the follow-up line.
func Text(h Header, g Guidance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s step %d/%d: %s\n", h.Script, h.Step, h.Total, g.Title)
	b.WriteString("DO:\n")
	for _, line := range g.Actions {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(g.Forbidden) > 0 {
		b.WriteString("FORBIDDEN:\n")
		for _, item := range g.Forbidden {
			b.WriteString("  - ")
			b.WriteString(item)
			b.WriteByte('\n')
		}
	}
	switch {
	case g.Complete:
		b.WriteString("WORKFLOW COMPLETE\n")
	case g.PassNext != "" || g.FailNext != "":
		b.WriteString("NEXT on pass: ")
		b.WriteString(g.PassNext)
		b.WriteByte('\n')
		b.WriteString("NEXT on fail: ")
		b.WriteString(g.FailNext)
		b.WriteByte('\n')
	case g.Next != "":
		b.WriteString("NEXT: ")
		b.WriteString(g.Next)
		b.WriteByte('\n')
	}
	return b.String()
}

// Tags renders the pseudo-XML format. The element sequence is step_header,
// current_action, forbidden (when present), then exactly one of
// workflow_complete, routing, or invoke_after.
func Tags(h Header, g Guidance) string {
	var b strings.Builder

	header := Element{
		Name: "step_header",
		Attrs: []Attr{
			{Key: "script", Value: h.Script},
			{Key: "step", Value: strconv.Itoa(h.Step)},
			{Key: "total", Value: strconv.Itoa(h.Total)},
		},
		Lines: []string{g.Title},
	}
	b.WriteString(header.String())

	b.WriteString(Element{Name: "current_action", Lines: g.Actions}.String())

	if len(g.Forbidden) > 0 {
		forbidden := Element{Name: "forbidden"}
		for _, item := range g.Forbidden {
			forbidden.Lines = append(forbidden.Lines, "- "+item)
		}
		b.WriteString(forbidden.String())
	}

	switch {
	case g.Complete:
		b.WriteString(Element{Name: "workflow_complete"}.String())
	case g.PassNext != "" || g.FailNext != "":
		routing := Element{
			Name: "routing",
			Children: []Element{
				{Name: "on_pass", Lines: []string{g.PassNext}},
				{Name: "on_fail", Lines: []string{g.FailNext}},
			},
		}
		b.WriteString(routing.String())
	case g.Next != "":
		b.WriteString(Element{Name: "invoke_after", Lines: []string{g.Next}}.String())
	}

	return b.String()
}
