package cli

import "github.com/spf13/cobra"

func newExecuteCommand(app *App) *cobra.Command {
	return newSkillCommand(app, "execute", extraFlags{milestones: true, plan: true},
		`Work a plan milestone by milestone with verification gates.

Thirteen steps from reading the plan to final approval. Verification
checkpoints sit after implementation, tests, self-review, and validation;
each gate step needs --qr-status with the verifier's verdict, and a failed
verdict routes back to the gate's work step in fix mode.

Example:
  cairn execute --step 1 --total-steps 13 --milestones 2,3`)
}
