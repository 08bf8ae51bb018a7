package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cairn/internal/gate"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/workflow"
)

// addStepFlags registers the flags every skill invocation shares.
func addStepFlags(fs *pflag.FlagSet) {
	fs.Int("step", 0, "current step number (required)")
	fs.Int("total-steps", 0, "size of the skill's step table (required)")
	fs.String("thoughts", "", "accumulated free-text state, echoed into follow-up commands")
	fs.Int("qr-iteration", 1, "current verification fix round")
	fs.String("qr-status", "", `verification verdict on gate steps: "pass" or "fail"`)
	fs.Bool("qr-fail", false, "marks a work step re-entered to fix verifier findings")
}

// extraFlags selects the optional per-skill flags a command registers. Only
// registered flags are parsed, so a skill never sees state it cannot use.
type extraFlags struct {
	confidence bool
	iteration  bool
	milestones bool
	plan       bool
	phase      bool
}

// everyExtraFlag is the full optional surface, used by the run command,
// which must accept whatever the resolved skill understands.
var everyExtraFlag = extraFlags{
	confidence: true,
	iteration:  true,
	milestones: true,
	plan:       true,
	phase:      true,
}

func addExtraFlags(fs *pflag.FlagSet, f extraFlags) {
	if f.confidence {
		fs.String("confidence", "", "self-assessed certainty: exploring, low, medium, high, certain")
	}
	if f.iteration {
		fs.Int("iteration", 0, "skill-owned loop counter, advisory-bounded")
	}
	if f.milestones {
		fs.String("milestones", "", "comma-separated plan milestone ids to work")
	}
	if f.plan {
		fs.String("plan", "", "plan file location override")
	}
	if f.phase {
		fs.String("phase", "", "verification report phase (defaults to the skill name)")
	}
}

// parseInvocation converts one command's flags into the typed invocation.
// Every enum and list is validated here, exactly once; nothing downstream
// re-parses a raw string.
func parseInvocation(fs *pflag.FlagSet, skillName string) (workflow.Invocation, error) {
	inv := workflow.Invocation{Skill: skillName}

	if !fs.Changed("step") || !fs.Changed("total-steps") {
		return inv, errors.New("--step and --total-steps are required")
	}
	inv.Step, _ = fs.GetInt("step")
	inv.TotalSteps, _ = fs.GetInt("total-steps")

	inv.Gate.Iteration, _ = fs.GetInt("qr-iteration")
	if inv.Gate.Iteration < 1 {
		return inv, errors.Errorf("--qr-iteration must be at least 1, got %d", inv.Gate.Iteration)
	}
	rawStatus, _ := fs.GetString("qr-status")
	status, err := gate.ParseStatus(rawStatus)
	if err != nil {
		return inv, err
	}
	inv.Gate.Status = status
	inv.Gate.Failed, _ = fs.GetBool("qr-fail")

	inv.Thoughts, _ = fs.GetString("thoughts")

	if fs.Lookup("confidence") != nil {
		raw, _ := fs.GetString("confidence")
		if inv.Confidence, err = workflow.ParseConfidence(raw); err != nil {
			return inv, err
		}
	}
	if fs.Lookup("iteration") != nil {
		inv.Iteration, _ = fs.GetInt("iteration")
		if inv.Iteration < 0 {
			return inv, errors.Errorf("--iteration must not be negative, got %d", inv.Iteration)
		}
	}
	if fs.Lookup("milestones") != nil {
		raw, _ := fs.GetString("milestones")
		if inv.Milestones, err = workflow.ParseMilestones(raw); err != nil {
			return inv, err
		}
	}
	if fs.Lookup("plan") != nil {
		inv.PlanPath, _ = fs.GetString("plan")
	}
	if fs.Lookup("phase") != nil {
		inv.Phase, _ = fs.GetString("phase")
	}

	return inv, nil
}

// outputMode resolves the guidance format: the --format flag when given,
// the configured default otherwise.
func outputMode(app *App, cmd *cobra.Command) (render.Mode, error) {
	raw, _ := cmd.Flags().GetString("format")
	if raw == "" {
		raw = app.Config.Output.Format
	}
	return render.ParseMode(raw)
}

// dispense runs one skill invocation end to end: parse the flags, resolve
// the step, and print the guidance document to the command's stdout.
func dispense(app *App, cmd *cobra.Command, s *skill.Skill) error {
	inv, err := parseInvocation(cmd.Flags(), s.Name)
	if err != nil {
		return err
	}
	mode, err := outputMode(app, cmd)
	if err != nil {
		return err
	}
	env, err := skill.NewEnv(cmd.Context(), app.Config, app.Skills)
	if err != nil {
		return err
	}
	out, err := skill.Run(env, s, inv, mode)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// newSkillCommand builds the subcommand for one built-in skill.
func newSkillCommand(app *App, name string, extras extraFlags, long string) *cobra.Command {
	s, err := app.Skills.Resolve(name)
	if err != nil {
		panic(err)
	}
	cmd := &cobra.Command{
		Use:   name + " --step <n> --total-steps <total>",
		Short: s.Summary,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispense(app, cmd, s)
		},
	}
	addStepFlags(cmd.Flags())
	addExtraFlags(cmd.Flags(), extras)
	return cmd
}
