package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cairn/internal/workflow"
)

func newDescribeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <skill>",
		Short: "Preview a skill's steps and routing",
		Long: `Print a skill's full step table: every step with its title and where it
routes, plus the pass path an orchestrator walks when each checkpoint
passes on the first round. Nothing executes; this is the dry-run view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Skills.Resolve(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d steps)", s.Name, s.Table.Len())))
			fmt.Fprintf(w, "  %s\n\n", s.Summary)

			for _, st := range s.Table.Steps() {
				fmt.Fprintf(w, "  %2d. %-44s %s\n", st.ID, st.Title, dimStyle.Render(routeLabel(st)))
			}

			fmt.Fprintf(w, "\n  Pass path: %s\n", passPath(s.Table))
			return nil
		},
	}
}

// routeLabel renders one step's routing for the table view.
func routeLabel(st workflow.Step) string {
	switch r := st.Route.(type) {
	case workflow.Branch:
		pass := "done"
		if r.Pass != 0 {
			pass = "step " + strconv.Itoa(r.Pass)
		}
		return fmt.Sprintf("gate %s: pass -> %s, fail -> step %d", st.Gate.Name, pass, r.Fail)
	case workflow.Terminal:
		return "workflow complete"
	default:
		return fmt.Sprintf("-> step %d", st.ID+1)
	}
}

// passPath renders the first-round happy path as a step sequence.
func passPath(table *workflow.Registry) string {
	trace := table.Trace()
	parts := make([]string, len(trace))
	for i, st := range trace {
		parts[i] = strconv.Itoa(st.ID)
	}
	return strings.Join(parts, " -> ")
}
