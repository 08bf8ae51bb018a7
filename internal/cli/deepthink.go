package cli

import "github.com/spf13/cobra"

func newDeepthinkCommand(app *App) *cobra.Command {
	return newSkillCommand(app, "deepthink", extraFlags{confidence: true, iteration: true},
		`Reason through a hard problem before acting.

Five steps: frame the problem, generate genuinely distinct angles,
critique them (--iteration counts the bounded critique rounds), synthesize
what survived, deliver the readout.

Example:
  cairn deepthink --step 1 --total-steps 5 --confidence low`)
}
