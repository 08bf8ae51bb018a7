// Package execute implements the execution skill: work a plan milestone by
// milestone through implementation, tests, integration, and docs, with a
// verification checkpoint after each risky stretch.
package execute

import (
	"fmt"

	"cairn/internal/artifact"
	"cairn/internal/dispatch"
	"cairn/internal/gate"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

// The four checkpoints. Spot-check and test-review catch problems while the
// diff is still small; the incoherence review is delegated because fresh
// eyes find what the author cannot; final approval ends the workflow.
var (
	spotCheck = gate.Config{
		Name:     "spot-check",
		WorkStep: 2,
		PassStep: 4,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
		SelfFix:  true,
	}
	testReview = gate.Config{
		Name:     "test-review",
		WorkStep: 4,
		PassStep: 6,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
		SelfFix:  true,
	}
	incoherenceReview = gate.Config{
		Name:     "incoherence-review",
		WorkStep: 8,
		PassStep: 10,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
	}
	finalApproval = gate.Config{
		Name:     "final-approval",
		WorkStep: 11,
		PassStep: 0,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
		SelfFix:  true,
	}
)

var table = workflow.MustRegistry("execute", []workflow.Step{
	{
		ID:    1,
		Title: "Read the plan and pick up the milestone",
		Actions: []string{
			"Read the plan end to end before touching anything.",
			"Confirm the milestone you are about to work is not already done.",
		},
		Forbidden: []string{
			"Do not write code yet.",
			"Do not reorder milestones on your own.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    2,
		Title: "Implement the milestone",
		Actions: []string{
			"Make the smallest change that completes the milestone.",
			"Follow the conventions of the surrounding code.",
			"Note every judgement call in --thoughts as you go.",
		},
		Forbidden: []string{
			"Do not touch files outside the milestone's scope.",
			"Do not fix unrelated problems you notice; record them instead.",
		},
		Route: workflow.Linear{},
	},
	workflow.GateStep(3, "Spot-check the implementation", spotCheck,
		"Act on the verdict below."),
	{
		ID:    4,
		Title: "Write the tests",
		Actions: []string{
			"Cover the behavior the milestone adds, including its failure paths.",
			"Make each test fail for exactly one reason.",
		},
		Forbidden: []string{
			"Do not weaken an existing assertion to make a test pass.",
		},
		Route: workflow.Linear{},
	},
	workflow.GateStep(5, "Review the tests", testReview,
		"Act on the verdict below."),
	{
		ID:    6,
		Title: "Integrate the change",
		Actions: []string{
			"Wire the new code into its callers.",
			"Run the build and the tests around the integration points.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    7,
		Title: "Self-review the full diff",
		Actions: []string{
			"Read the complete diff as if reviewing a stranger's change.",
			"List every leftover: debug output, dead code, stale comments, half-renames.",
			"Carry the list into --thoughts for the next step.",
		},
		Forbidden: []string{
			"Do not fix anything during the read.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    8,
		Title: "Resolve your own findings",
		Actions: []string{
			"Work through the self-review list item by item.",
			"Re-run the tests after the last fix.",
		},
		Route: workflow.Linear{},
	},
	workflow.GateStep(9, "Incoherence review", incoherenceReview,
		"Act on the verdict below."),
	{
		ID:    10,
		Title: "Update the documentation",
		Actions: []string{
			"Update every document the change invalidates, including doc comments.",
			"Add nothing speculative; document what the code now does.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    11,
		Title: "Run the full validation suite",
		Actions: []string{
			"Run the complete build, test, and lint pipeline from clean.",
			"Record the exact commands and their results in --thoughts.",
		},
		Forbidden: []string{
			"Do not skip a failing check because it looks unrelated.",
		},
		Route: workflow.Linear{},
	},
	{
		ID:    12,
		Title: "Prepare the handoff summary",
		Actions: []string{
			"Summarize what changed, why, and how it was validated.",
			"List the milestones completed and any follow-ups you recorded.",
		},
		Route: workflow.Linear{},
	},
	workflow.GateStep(13, "Final approval", finalApproval,
		"Act on the verdict below."),
})

// New returns the execute skill.
func New() *skill.Skill {
	return &skill.Skill{
		Name:    "execute",
		Aliases: []string{"exec"},
		Summary: "Work a plan milestone by milestone with verification gates",
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

	switch st.ID {
	case 1:
		lines, ok := planContext(e, inv)
		g.Actions = append(g.Actions, lines...)
		if !ok {
			return g, nil
		}
	case 2:
		g.Actions = append(g.Actions, milestoneFocus(e, inv)...)
	}

	return e.Finish(table, inv, g)
}

// planContext loads the plan and renders the milestone listing for step 1.
// A missing plan or an unknown milestone id blocks the workflow: execute
// never invents work to do.
func planContext(e *skill.Env, inv workflow.Invocation) ([]string, bool) {
	r := e.PlanReader(inv)
	p, err := r.Plan()
	if err != nil {
		return render.Escalate(
			"plan file is unavailable",
			fmt.Sprintf("Expected it at %s.", r.PlanPath()),
			"Run the plan skill first, or pass --plan with the correct location.",
		), false
	}

	lines := []string{"", "Goal: " + p.Goal}

	if len(inv.Milestones) > 0 {
		lines = append(lines, "Selected milestones:")
		for _, id := range inv.Milestones {
			m, ok := p.Milestone(id)
			if !ok {
				return render.Escalate(
					fmt.Sprintf("milestone %d is not in the plan", id),
					fmt.Sprintf("The plan at %s defines %d milestones.", r.PlanPath(), len(p.Milestones)),
				), false
			}
			lines = append(lines, fmt.Sprintf("- %d: %s", m.ID, m.Title))
		}
		return lines, true
	}

	lines = append(lines, "Remaining milestones, in plan order:")
	remaining := 0
	for _, m := range p.Milestones {
		if m.Status == artifact.MilestoneDone {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %d: %s", m.ID, m.Title))
		remaining++
	}
	if remaining == 0 {
		lines = append(lines, "- none: every milestone is marked done")
	}
	return lines, true
}

// milestoneFocus names the milestone under work on step 2. The plan read is
// best-effort here; step 1 already gated on it.
func milestoneFocus(e *skill.Env, inv workflow.Invocation) []string {
	if len(inv.Milestones) == 0 {
		return nil
	}
	p, err := e.PlanReader(inv).Plan()
	if err != nil {
		return nil
	}
	var lines []string
	for _, id := range inv.Milestones {
		if m, ok := p.Milestone(id); ok {
			lines = append(lines, fmt.Sprintf("- %d: %s", m.ID, m.Title))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return append([]string{"", "Milestones under work:"}, lines...)
}
