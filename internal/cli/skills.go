package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cairn/internal/manifest"
	"cairn/internal/skill"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func newSkillsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List the built-in skills and project dispatch targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := skill.NewEnv(cmd.Context(), app.Config, app.Skills)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headingStyle.Render("Built-in skills"))
			for _, s := range app.Skills.All() {
				name := s.Name
				if len(s.Aliases) > 0 {
					name += dimStyle.Render(" (" + strings.Join(s.Aliases, ", ") + ")")
				}
				fmt.Fprintf(w, "  %-28s %2d steps  %-16s %s\n",
					nameStyle.Render(name), s.Table.Len(), s.Role, s.Summary)
			}

			if env.Catalog != nil && len(env.Catalog.Names()) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, headingStyle.Render("Project catalog"))
				for _, name := range env.Catalog.Names() {
					entry, _ := env.Catalog.Find(name)
					fmt.Fprintf(w, "  %-28s %s\n", nameStyle.Render(name), describeEntry(entry))
				}
			}
			return nil
		},
	}
}

// describeEntry renders one catalog row for the listing.
func describeEntry(e *manifest.Entry) string {
	if e.Mode == manifest.ModeFreeform {
		return fmt.Sprintf("freeform  %s", e.Role)
	}
	return fmt.Sprintf("%2d steps  %-16s %s", e.Steps, e.Role, e.Target())
}
