// Package refactor implements the restructuring skill: map current behavior,
// stage the change set, apply it stage by stage, and prove behavior survived
// at a verification checkpoint.
package refactor

import (
	"fmt"

	"cairn/internal/dispatch"
	"cairn/internal/gate"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

var behaviorCheck = gate.Config{
	Name:     "behavior-preservation",
	WorkStep: 4,
	PassStep: 6,
	Verifier: "review",
	FixRole:  dispatch.RoleDeveloper,
	SelfFix:  true,
}

var table = workflow.MustRegistry("refactor", []workflow.Step{
	{
		ID:    1,
		Title: "Map the behavior you must preserve",
		Actions: []string{
			"List the observable behavior of the code under change: inputs, outputs, side effects.",
			"Find the tests that pin each behavior down; note the gaps.",
		},
		Forbidden: []string{
			"Do not change any code yet.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    2,
		Title: "Find the seams",
		Actions: []string{
			"Locate the boundaries where the code can be cut without changing behavior.",
			"Prefer seams the existing tests already exercise.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    3,
		Title: "Stage the change set",
		Actions: []string{
			"Order the changes into stages that each leave the tree green.",
			"Size each stage so it could ship alone.",
		},
		Forbidden: []string{
			"Do not plan a stage that mixes moves with behavior edits.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    4,
		Title: "Apply the staged changes",
		Actions: []string{
			"Apply one stage at a time and run the tests after each.",
			"Stop and re-stage if a stage turns out bigger than planned.",
		},
		Forbidden: []string{
			"Do not change behavior while moving code.",
			"Do not skip the test run between stages.",
		},
		Route: workflow.Linear{},
	},
	workflow.GateStep(5, "Behavior preservation check", behaviorCheck,
		"Act on the verdict below."),
	{
		ID:    6,
		Title: "Tidy the new shape",
		Actions: []string{
			"Rename what the new structure made misleading.",
			"Delete the scaffolding the staged migration needed.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    7,
		Title: "Refresh the affected documentation",
		Actions: []string{
			"Update doc comments and documents that describe the old shape.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    8,
		Title: "Hand off",
		Actions: []string{
			"Summarize what moved, what got renamed, and the proof behavior held.",
			"List any behavior gaps you found but deliberately left alone.",
		},
		Route: workflow.Terminal{},
	},
})

// New returns the refactor skill.
func New() *skill.Skill {
	return &skill.Skill{
		Name:    "refactor",
		Summary: "Restructure code without changing behavior",
		Role:    dispatch.RoleDeveloper,
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

	if st.ID == 4 {
		g.Actions = append(g.Actions, stageActions(e, inv)...)
	}

	return e.Finish(table, inv, g)
}

// stageActions handles the stage loop on the apply step. The loop command
// re-enters this step with the counter raised; past the advisory bound the
// guidance pushes toward finishing instead of re-staging.
func stageActions(e *skill.Env, inv workflow.Invocation) []string {
	limit := e.Config.Gate.IterationLimit
	var lines []string

	if inv.Iteration > 0 {
		lines = append(lines, "", fmt.Sprintf("You are on stage %d of your staged set.", inv.Iteration))
	} else {
		lines = append(lines, "")
	}

	if inv.Iteration >= limit {
		lines = append(lines,
			fmt.Sprintf("The stage counter has reached %d, the advisory bound.", inv.Iteration),
			"Prefer finishing the remaining work in this pass over starting another stage.")
		return lines
	}

	loop := e.Dispatch.Step(inv.Skill, 4, inv.TotalSteps).
		WithInt("iteration", inv.Iteration+1).
		WithPlaceholder("thoughts", "stage-notes")
	lines = append(lines,
		"If stages remain after this one, run the next stage with:",
		loop.String())
	return lines
}
