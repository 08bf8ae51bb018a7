package cli

import "github.com/spf13/cobra"

func newPlanCommand(app *App) *cobra.Command {
	return newSkillCommand(app, "plan", extraFlags{confidence: true, plan: true},
		`Draft an implementation plan as ordered milestones.

Four steps: survey the goal, draft the milestones, review the draft as its
executor, write the plan file. The survey step scales to --confidence:
certain skips fresh investigation, anything below medium loops the survey
until confidence rises.

Example:
  cairn plan --step 1 --total-steps 4 --confidence medium`)
}
