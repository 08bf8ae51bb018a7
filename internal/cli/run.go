package cli

import "github.com/spf13/cobra"

func newRunCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <skill> --step <n> --total-steps <total>",
		Short: "Run a skill under the name a dispatch block used",
		Long: `Run a built-in skill by name or alias.

Generated dispatch commands route their targets through run, so the same
invocation shape covers built-in skills and project catalog entries that
resolve to one. The flags after the skill name are the skill's own.

Example:
  cairn run review --step 1 --total-steps 6 --phase spot-check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Skills.Resolve(args[0])
			if err != nil {
				return err
			}
			return dispense(app, cmd, s)
		},
	}
	addStepFlags(cmd.Flags())
	addExtraFlags(cmd.Flags(), everyExtraFlag)
	return cmd
}
