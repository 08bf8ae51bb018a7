// Package plan implements the planning skill: survey the goal, draft
// milestones sized for single execute passes, review the draft, and hand the
// plan file off.
package plan

import (
	"fmt"

	"cairn/internal/dispatch"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

var table = workflow.MustRegistry("plan", []workflow.Step{
	{
		ID:    1,
		Title: "Survey the goal and the code it touches",
		Actions: []string{
			"Restate the goal in one or two sentences.",
			"Separate what you know from what you are assuming.",
		},
		Forbidden: []string{
			"Do not draft milestones yet.",
			"Do not modify any files.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    2,
		Title: "Draft the milestone plan",
		Actions: []string{
			"Break the work into milestones sized for a single execute pass each.",
			"Give every milestone an id, a title, and the files it touches.",
			"Attach assumptions and open questions to the milestone they affect.",
		},
		Forbidden: []string{
			"Do not start implementing.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    3,
		Title: "Review the draft as its executor",
		Actions: []string{
			"Re-read the draft as the developer who must execute it cold.",
			"Split any milestone that cannot land in a single pass.",
			"Reorder milestones until every dependency points backwards.",
			"Fold each finding back into the draft.",
		},
		Forbidden: []string{
			"Do not hand off a plan you would not execute yourself.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    4,
		Title: "Write the plan file and hand off",
		Actions: []string{
			"Record every milestone with status pending.",
		},
		Route: workflow.Terminal{},
	},
})

// New returns the plan skill.
func New() *skill.Skill {
	return &skill.Skill{
		Name:    "plan",
		Summary: "Draft an implementation plan as ordered milestones",
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
		g.Actions = append(g.Actions, surveyActions(e, inv)...)
	case 2:
		lines, ok := e.EmbedDoc("plan-format")
		if !ok {
			g.Actions = append(g.Actions, lines...)
			return g, nil
		}
		g.Actions = append(g.Actions, "", "Shape the draft to the house plan format:")
		g.Actions = append(g.Actions, lines...)
	case 4:
		g.Actions = append(g.Actions, handoffActions(e, inv)...)
	}

	return e.Finish(table, inv, g)
}

// surveyActions scales the investigation to the stated confidence. Certain
// skips it; anything below medium gets a broad survey and a re-run command
// so drafting never starts on guesswork.
func surveyActions(e *skill.Env, inv workflow.Invocation) []string {
	switch {
	case inv.Confidence == workflow.ConfidenceCertain:
		return []string{
			"",
			"Confidence is certain: skip fresh investigation.",
			"Verify your standing assumptions against the files they rest on, then move on to drafting.",
		}
	case inv.Confidence.AtLeast(workflow.ConfidenceMedium):
		return []string{
			"",
			fmt.Sprintf("Confidence is %s: run a targeted pass.", inv.Confidence),
			"Read the files the goal names and everything they import directly.",
			"Carry each unknown that survives into --thoughts for the next step.",
		}
	default:
		loop := e.Dispatch.Step(inv.Skill, 1, inv.TotalSteps).
			WithPlaceholder("confidence", "updated-confidence").
			WithPlaceholder("thoughts", "what-you-learned")
		return []string{
			"",
			"Confidence is below medium: survey broadly before drafting anything.",
			"Map the packages the goal touches and how data flows between them.",
			"Re-run this step until you reach at least medium confidence:",
			loop.String(),
		}
	}
}

// handoffActions names the plan location and, when the execute skill is
// available, the command that starts working the plan.
func handoffActions(e *skill.Env, inv workflow.Invocation) []string {
	lines := []string{
		"",
		fmt.Sprintf("Write the final plan to %s.", e.PlanReader(inv).PlanPath()),
		"Report the plan location and the milestone count to your caller.",
	}
	if t, ok := e.ResolveTarget("execute"); ok && t.Scripted {
		cmd := e.Dispatch.Target(t.Invoke, 1, t.Steps)
		if inv.PlanPath != "" {
			cmd.WithString("plan", inv.PlanPath)
		}
		lines = append(lines, "Suggest the caller continue with:", cmd.String())
	}
	return lines
}
