// Package deepthink implements the structured reasoning skill: frame a hard
// problem, generate genuinely distinct angles, critique them in bounded
// rounds, and deliver a synthesized readout.
package deepthink

import (
	"fmt"

	"cairn/internal/dispatch"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

var table = workflow.MustRegistry("deepthink", []workflow.Step{
	{
		ID:    1,
		Title: "Frame the problem",
		Actions: []string{
			"State the problem in one sentence a stranger would understand.",
			"List the hard constraints and what success looks like.",
			"Name the decision that actually has to be made.",
		},
		Forbidden: []string{
			"Do not propose solutions yet.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    2,
		Title: "Generate distinct angles",
		Actions: []string{
			"Produce at least three approaches that differ in kind, not in detail.",
			"Steelman each one: write the strongest case for it.",
		},
		Forbidden: []string{
			"Do not evaluate the angles yet.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    3,
		Title: "Critique every angle",
		Actions: []string{
			"Attack each angle's strongest case: where does it break first?",
			"Check each against the constraints from the framing step.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    4,
		Title: "Synthesize the answer",
		Actions: []string{
			"Combine what survived the critique into one recommendation.",
			"Name the uncertainty that no further thinking would remove.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    5,
		Title: "Deliver the readout",
		Actions: []string{
			"Present the recommendation, the rejected angles, and why each lost.",
			"State your confidence and what evidence would change the answer.",
		},
		Route: workflow.Terminal{},
	},
})

// New returns the deepthink skill.
func New() *skill.Skill {
	return &skill.Skill{
		Name:    "deepthink",
		Aliases: []string{"think"},
		Summary: "Reason through a hard problem before acting",
		Role:    dispatch.RoleGeneralPurpose,
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
		g.Actions = append(g.Actions, framingDepth(inv)...)
	case 3:
		g.Actions = append(g.Actions, critiqueLoop(e, inv)...)
	}

	return e.Finish(table, inv, g)
}

// framingDepth widens the framing work when the caller starts unsure.
func framingDepth(inv workflow.Invocation) []string {
	if inv.Confidence.AtLeast(workflow.ConfidenceHigh) {
		return []string{
			"",
			fmt.Sprintf("Confidence is %s: keep the framing tight and move on.", inv.Confidence),
		}
	}
	return []string{
		"",
		"Confidence is below high: spend real time here.",
		"Write down the interpretations of the problem you might be conflating.",
	}
}

// critiqueLoop offers the bounded refine loop: when the critique exposes a
// missing angle, step 2 re-runs with the counter raised. Past the advisory
// bound the guidance pushes toward synthesis.
func critiqueLoop(e *skill.Env, inv workflow.Invocation) []string {
	limit := e.Config.Gate.IterationLimit
	var lines []string

	if inv.Iteration > 0 {
		lines = append(lines, "", fmt.Sprintf("This is critique round %d.", inv.Iteration))
	} else {
		lines = append(lines, "")
	}

	if inv.Iteration >= limit {
		lines = append(lines,
			fmt.Sprintf("The critique counter has reached %d, the advisory bound.", inv.Iteration),
			"Further rounds rarely add signal. Proceed to synthesis with what you have.")
		return lines
	}

	loop := e.Dispatch.Step(inv.Skill, 2, inv.TotalSteps).
		WithInt("iteration", inv.Iteration+1).
		WithPlaceholder("thoughts", "what-the-critique-exposed")
	lines = append(lines,
		"If the critique exposed a missing kind of approach, generate it before synthesizing:",
		loop.String())
	return lines
}
