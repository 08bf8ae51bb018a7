package cli

import "github.com/spf13/cobra"

func newRefactorCommand(app *App) *cobra.Command {
	return newSkillCommand(app, "refactor", extraFlags{iteration: true},
		`Restructure code without changing behavior.

Eight steps: map the behavior to preserve, find the seams, stage the
change set, apply it stage by stage (--iteration counts the stages), prove
behavior survived at the preservation checkpoint, then tidy, document, and
hand off.

Example:
  cairn refactor --step 4 --total-steps 8 --iteration 2`)
}
