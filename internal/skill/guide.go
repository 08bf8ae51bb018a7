package skill

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"cairn/internal/dispatch"
	"cairn/internal/gate"
	"cairn/internal/render"
	"cairn/internal/workflow"
)

// Base seeds guidance from a step's static table row. Resolvers append their
// invocation-dependent lines afterwards.
func Base(st workflow.Step) render.Guidance {
	return render.Guidance{
		Title:     st.Title,
		Actions:   append([]string(nil), st.Actions...),
		Forbidden: append([]string(nil), st.Forbidden...),
	}
}

// Finish computes a step's follow-up from its table route and, for work
// steps re-entered in fix mode, prepends the fix-round context. Resolvers
// call it last.
//
// Routing:
//   - Terminal steps complete the workflow.
//   - Gate steps resolve the supplied verdict; see [gate.Resolve].
//   - Linear steps get a single follow-up command, except when the next
//     step is a gate: those emit the verifier dispatch plus the
//     verdict-routed re-entry pair.
func (e *Env) Finish(table *workflow.Registry, inv workflow.Invocation, g render.Guidance) (render.Guidance, error) {
	st, err := table.Step(inv.Step)
	if err != nil {
		return render.Guidance{}, err
	}

	if st.Gate == nil && inv.Gate.Failed {
		if gcfg, ok := table.FixGate(st.ID); ok {
			g.Actions = append(e.fixContext(inv, gcfg), g.Actions...)
		}
	}

	switch st.Route.(type) {
	case workflow.Terminal:
		g.Complete = true
	case workflow.Branch:
		return e.resolveGate(inv, st, g)
	case workflow.Linear:
		next := st.ID + 1
		nextStep, err := table.Step(next)
		if err != nil {
			return render.Guidance{}, err
		}
		if nextStep.Gate != nil {
			e.gateApproach(&g, inv, next, *nextStep.Gate)
			break
		}
		c := e.NextCommand(inv, next)
		if inv.Gate.Iteration > 1 {
			c.WithInt("qr-iteration", inv.Gate.Iteration)
		}
		g.Next = c.String()
	}
	return g, nil
}

// NextCommand builds the follow-up command for an ordinary linear advance,
// carrying the invocation state the caller must echo.
func (e *Env) NextCommand(inv workflow.Invocation, next int) *dispatch.Command {
	return e.forward(e.Dispatch.Step(inv.Skill, next, inv.TotalSteps), inv)
}

// forward copies the invocation state every follow-up command echoes:
// milestone selection, plan override, report phase, and bounded thoughts.
func (e *Env) forward(c *dispatch.Command, inv workflow.Invocation) *dispatch.Command {
	if len(inv.Milestones) > 0 {
		c.WithString("milestones", workflow.FormatMilestones(inv.Milestones))
	}
	if inv.PlanPath != "" {
		c.WithString("plan", inv.PlanPath)
	}
	if inv.Phase != "" && inv.Phase != inv.Skill {
		c.WithString("phase", inv.Phase)
	}
	if inv.Thoughts != "" {
		c.WithString("thoughts", e.Thoughts(inv.Thoughts))
	}
	return c
}

// gateApproach finishes a step whose successor is a verification gate: the
// step's own work, then the verifier dispatch, then the verdict-routed
// re-entry commands. The fail command always carries the round so the gate
// can count; the pass command carries it only mid-fix.
func (e *Env) gateApproach(g *render.Guidance, inv workflow.Invocation, gateID int, gcfg gate.Config) {
	round := inv.Gate.Round()

	g.Actions = append(g.Actions, "",
		fmt.Sprintf("When the work above is complete, dispatch the %s verifier:", gcfg.Name))
	g.Actions = append(g.Actions, e.VerifierBlock(inv, gcfg, round)...)

	pass := e.forward(e.Dispatch.Step(inv.Skill, gateID, inv.TotalSteps), inv).
		WithString("qr-status", "pass")
	if round > 1 {
		pass.WithInt("qr-iteration", round)
	}
	fail := e.forward(e.Dispatch.Step(inv.Skill, gateID, inv.TotalSteps), inv).
		WithString("qr-status", "fail").
		WithInt("qr-iteration", round)

	g.PassNext = pass.String()
	g.FailNext = fail.String()
}

// VerifierBlock builds the dispatch block for a gate's verifier. A target
// that cannot be resolved, or that resolves to a freeform catalog entry,
// yields an escalation block instead.
func (e *Env) VerifierBlock(inv workflow.Invocation, gcfg gate.Config, round int) []string {
	t, ok := e.ResolveTarget(gcfg.Verifier)
	if !ok {
		return render.Escalate(
			fmt.Sprintf("verifier %q is not a known skill or catalog entry", gcfg.Verifier),
			fmt.Sprintf("The %s checkpoint cannot run without it.", gcfg.Name),
		)
	}
	if !t.Scripted {
		return render.Escalate(
			fmt.Sprintf("verifier %q is a freeform catalog entry", gcfg.Verifier),
			"Checkpoints need a scripted verifier that produces a pass or fail verdict.",
		)
	}

	cmd := e.Dispatch.Target(t.Invoke, 1, t.Steps).WithString("phase", gcfg.Name)
	if inv.PlanPath != "" {
		cmd.WithString("plan", inv.PlanPath)
	}
	if round > 1 {
		cmd.WithInt("qr-iteration", round)
	}

	return e.Dispatch.Block(dispatch.Dispatch{
		Role: t.Role,
		Context: []dispatch.ContextVar{
			{Name: "scope", Desc: "the files, diff, or milestone under review"},
		},
		Command: cmd,
	})
}

// resolveGate applies a verdict to a gate step.
func (e *Env) resolveGate(inv workflow.Invocation, st workflow.Step, g render.Guidance) (render.Guidance, error) {
	gcfg := *st.Gate
	out, err := gate.Resolve(gcfg, inv.Gate, e.Config.Gate.AdvisoryThreshold)
	if err != nil {
		return render.Guidance{}, errors.Wrapf(err, "skill %s: step %d", inv.Skill, st.ID)
	}
	if out.FixMode {
		return e.gateFail(inv, st.ID, gcfg, out, g), nil
	}
	return e.gatePass(inv, gcfg, out, g), nil
}

// gatePass advances past a passed checkpoint. The fix round does not carry
// forward: each gate counts its own rounds.
func (e *Env) gatePass(inv workflow.Invocation, gcfg gate.Config, out gate.Outcome, g render.Guidance) render.Guidance {
	if out.Iteration > 1 {
		g.Actions = append(g.Actions,
			fmt.Sprintf("The %s verification passed on round %d.", gcfg.Name, out.Iteration))
	} else {
		g.Actions = append(g.Actions,
			fmt.Sprintf("The %s verification passed.", gcfg.Name))
	}
	if out.Terminal {
		g.Actions = append(g.Actions, "This was the final checkpoint.")
		g.Complete = true
		return g
	}
	g.Next = e.NextCommand(inv, out.Next).String()
	return g
}

// gateFail turns a failed verdict into a fix round. Self-fix gates hand the
// orchestrator the work-step command directly; delegated gates wrap it in a
// dispatch for the gate's fix role and route the next verdict back here.
func (e *Env) gateFail(inv workflow.Invocation, gateID int, gcfg gate.Config, out gate.Outcome, g render.Guidance) render.Guidance {
	round := inv.Gate.Round()

	g.Actions = append(g.Actions,
		fmt.Sprintf("The %s verification failed on round %d.", gcfg.Name, round))
	g.Actions = append(g.Actions, e.findingLines(gcfg)...)

	if out.Advise {
		g.Actions = append(g.Actions, "")
		g.Actions = append(g.Actions, advisory(gcfg, round)...)
	}

	fix := e.forward(e.Dispatch.Step(inv.Skill, gcfg.WorkStep, inv.TotalSteps), inv).
		WithFix(out.Iteration)

	if gcfg.SelfFix {
		g.Actions = append(g.Actions, "",
			"Address every open finding yourself, starting from the command below.")
		g.Next = fix.String()
		return g
	}

	g.Actions = append(g.Actions, "",
		fmt.Sprintf("Dispatch a %s to address the findings:", gcfg.FixRole))
	g.Actions = append(g.Actions, e.Dispatch.Block(dispatch.Dispatch{
		Role: gcfg.FixRole,
		Context: []dispatch.ContextVar{
			{Name: "findings", Desc: "the open findings the fix must address"},
		},
		Command: fix,
	})...)
	g.Actions = append(g.Actions, "",
		"When the fix is reported complete, dispatch the verifier again:")
	g.Actions = append(g.Actions, e.VerifierBlock(inv, gcfg, out.Iteration)...)

	pass := e.forward(e.Dispatch.Step(inv.Skill, gateID, inv.TotalSteps), inv).
		WithString("qr-status", "pass").
		WithInt("qr-iteration", out.Iteration)
	fail := e.forward(e.Dispatch.Step(inv.Skill, gateID, inv.TotalSteps), inv).
		WithString("qr-status", "fail").
		WithInt("qr-iteration", out.Iteration)

	g.PassNext = pass.String()
	g.FailNext = fail.String()
	return g
}

// fixContext is what a work step leads with when re-entered under --qr-fail.
func (e *Env) fixContext(inv workflow.Invocation, gcfg gate.Config) []string {
	lines := []string{
		fmt.Sprintf("Fix round %d for the %s checkpoint.", inv.Gate.Round(), gcfg.Name),
	}
	lines = append(lines, e.findingLines(gcfg)...)
	lines = append(lines, "Address the findings. Do not redo work that already passed.", "")
	return lines
}

// findingLines summarizes the open findings from the gate's report file. The
// report is optional enrichment: when unreadable, the verifier's reply stays
// the source of truth.
func (e *Env) findingLines(gcfg gate.Config) []string {
	rep, err := e.Artifacts.Report(gcfg.Name)
	if err != nil {
		return []string{fmt.Sprintf("No readable findings report at %s. Work from the verifier's reply instead.",
			e.Artifacts.ReportPath(gcfg.Name))}
	}
	open := rep.Open()
	if len(open) == 0 {
		return []string{"The findings report lists no open items. Confirm the failure details from the verifier's reply."}
	}
	lines := []string{"Open findings:"}
	for _, f := range open {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", f.Severity, f.ID, f.Note))
	}
	return lines
}

// advisory renders the explicit decision point a repeatedly failing gate
// demands. The framework never blocks the retry; it makes continuing a
// deliberate choice.
func advisory(gcfg gate.Config, round int) []string {
	el := render.Element{
		Name: "decision",
		Attrs: []render.Attr{
			{Key: "checkpoint", Value: gcfg.Name},
			{Key: "round", Value: strconv.Itoa(round)},
		},
		Lines: []string{
			fmt.Sprintf("This checkpoint has failed %d rounds in a row.", round),
			"Pick one explicitly before going on:",
			"- continue: run the fix flow below for another round",
			"- skip: re-invoke this step with --qr-status pass and record the skip in your summary",
			"- abort: stop here and report the unresolved findings to your caller",
		},
	}
	return el.BlockLines()
}
