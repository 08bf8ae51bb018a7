package cli

import "github.com/spf13/cobra"

func newReviewCommand(app *App) *cobra.Command {
	return newSkillCommand(app, "review", extraFlags{plan: true, phase: true},
		`Verify finished work and record findings.

Six steps: establish the scope, read the change cold, check it against the
conventions, record findings in the phase's report file, decide the
verdict, report it upward. Dispatching workflows pass --phase so the
report files under their checkpoint's name.

Example:
  cairn review --step 1 --total-steps 6 --phase spot-check`)
}
