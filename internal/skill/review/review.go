// Package review implements the verification skill. It is the default
// verifier behind every checkpoint: it inspects finished work, records
// findings in a report file, and carries a pass or fail verdict back to the
// workflow that dispatched it.
package review

import (
	"fmt"

	"cairn/internal/dispatch"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

var table = workflow.MustRegistry("review", []workflow.Step{
	{
		ID:    1,
		Title: "Establish the review scope",
		Actions: []string{
			"Confirm exactly what you are reviewing: the files, the diff, or the milestone.",
			"Read the caller's context before opening anything else.",
		},
		Forbidden: []string{
			"Do not start fixing anything you find.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    2,
		Title: "Read the change like a stranger",
		Actions: []string{
			"Read the full change without the author's narration.",
			"Note every place you had to stop and re-read.",
		},
		Forbidden: []string{
			"Do not edit the code under review.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    3,
		Title: "Check the work against the conventions",
		Actions: []string{
			"Walk the checklist below item by item against the change.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    4,
		Title: "Record the findings",
		Actions: []string{
			"Write one finding per issue, with the file and line it lives at.",
			"Severity is major when you would not ship it, minor otherwise.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    5,
		Title: "Decide the verdict",
		Actions: []string{
			"Pass only work you would ship as-is.",
			"Fail when any open major finding remains.",
		},
		Forbidden: []string{
			"Do not soften a verdict to keep the workflow moving.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    6,
		Title: "Report the verdict upward",
		Actions: []string{
			"Reply to your caller with the verdict, the open findings count, and the report location.",
			"The caller re-enters its own workflow with your verdict; do not advance it yourself.",
		},
		Route: workflow.Terminal{},
	},
})

// New returns the review skill.
func New() *skill.Skill {
	return &skill.Skill{
		Name:    "review",
		Aliases: []string{"code-review"},
		Summary: "Verify finished work and record findings",
		Role:    dispatch.RoleReviewer,
		Table:   table,
		Resolve: resolve,
	}
}

func resolve(e *skill.Env, inv workflow.Invocation) (render.Guidance, error) {
	st, err := table.Step(inv.Step)
	if err != nil {
		return render.Guidance{}, err
	}
	g := skill.Base(st)

	switch st.ID {
	case 1:
		g.Actions = append(g.Actions, scopeActions(e, inv)...)
	case 3:
		lines, ok := e.EmbedDoc("review-checklist")
		if !ok {
			g.Actions = append(g.Actions, lines...)
			return g, nil
		}
		g.Actions = append(g.Actions, "")
		g.Actions = append(g.Actions, lines...)
	case 4:
		g.Actions = append(g.Actions, reportActions(e, inv)...)
	}

	return e.Finish(table, inv, g)
}

// reportPhase is the phase the report files under: the --phase flag when
// given, the skill name otherwise.
func reportPhase(inv workflow.Invocation) string {
	if inv.Phase != "" {
		return inv.Phase
	}
	return inv.Skill
}

// scopeActions names the report phase and, on re-verification rounds, the
// findings from the prior round that must be re-checked first.
func scopeActions(e *skill.Env, inv workflow.Invocation) []string {
	phase := reportPhase(inv)
	lines := []string{"", fmt.Sprintf("This review reports under the %s phase.", phase)}

	if p, err := e.PlanReader(inv).Plan(); err == nil && p.Goal != "" {
		lines = append(lines, "Plan goal: "+p.Goal)
	}

	if round := inv.Gate.Round(); round > 1 {
		lines = append(lines, fmt.Sprintf("This is verification round %d. Re-check last round's findings first:", round))
		rep, err := e.Artifacts.Report(phase)
		if err != nil {
			return append(lines, fmt.Sprintf("- the prior report at %s is unreadable; rely on your caller's context",
				e.Artifacts.ReportPath(phase)))
		}
		for _, f := range rep.Open() {
			lines = append(lines, fmt.Sprintf("- [%s] %s: %s", f.Severity, f.ID, f.Note))
		}
	}
	return lines
}

// reportActions spells out where the findings file goes and the fields it
// carries, so reports from different reviewers stay machine-readable.
func reportActions(e *skill.Env, inv workflow.Invocation) []string {
	phase := reportPhase(inv)
	return []string{
		"",
		fmt.Sprintf("Write the findings to %s.", e.Artifacts.ReportPath(phase)),
		fmt.Sprintf("Set phase to %q, iteration to %d, and verdict to pass or fail.", phase, inv.Gate.Round()),
		"Each finding carries an id, a severity, a note, and a resolved flag.",
		"Give findings stable ids; on later rounds mark fixed ones resolved instead of deleting them.",
	}
}
