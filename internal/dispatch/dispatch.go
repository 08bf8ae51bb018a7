// Package dispatch builds the literal command strings and sub-agent hand-off
// blocks that guidance embeds.
//
// A skill never runs anything itself. When a step needs work done by another
// agent, its guidance carries a dispatch block: which agent role to use, what
// context the dispatcher must supply, and either the exact command the
// sub-agent runs first (scripted) or the constraints it improvises within
// (free-form). Follow-up commands that re-enter a skill are built the same
// way, as ordered flag lists on a [Command].
//
// Targets come in two shapes. A bare name, dots allowed ("review",
// "review.security"), is invoked through the program's run subcommand. A
// target containing a path separator ("./scripts/review.sh") is invoked
// directly.
//
// Key types:
//   - [Builder] - constructs commands and dispatch blocks for one program
//   - [Command] - an ordered, deterministic flag list
//   - [Dispatch] - the description of one sub-agent hand-off
//   - [Role] - the closed set of agent roles
package dispatch

import (
	"strings"

	"github.com/pkg/errors"

	"cairn/internal/render"
)

// Role identifies which kind of agent a dispatch targets.
type Role string

const (
	RoleReviewer        Role = "reviewer"
	RoleDeveloper       Role = "developer"
	RoleTechnicalWriter Role = "technical-writer"
	RoleExplorer        Role = "explorer"
	RoleGeneralPurpose  Role = "general-purpose"
)

// Roles lists every recognized agent role in stable order.
var Roles = []Role{
	RoleReviewer,
	RoleDeveloper,
	RoleTechnicalWriter,
	RoleExplorer,
	RoleGeneralPurpose,
}

// ParseRole validates a role name from a flag, config key, or catalog row.
func ParseRole(s string) (Role, error) {
	name := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range Roles {
		if name == r {
			return r, nil
		}
	}
	return "", errors.Errorf("unknown agent role %q (valid: reviewer, developer, technical-writer, explorer, general-purpose)", s)
}

// ContextVar names one piece of context the dispatching agent must supply
// when writing the sub-agent prompt. Desc tells the dispatcher what belongs
// there; the framework never fills values itself.
type ContextVar struct {
	Name string
	Desc string
}

// Dispatch describes one sub-agent hand-off.
//
// Scripted dispatches carry the Command the sub-agent runs first. Free-form
// dispatches leave Command nil and carry Constraints instead.
type Dispatch struct {
	Role        Role
	Context     []ContextVar
	Command     *Command
	Constraints []string
}

// Builder constructs commands and dispatch blocks for one program name and
// one role-to-model assignment. Both come from configuration, so every
// guidance line that names a model stays consistent across a run.
type Builder struct {
	program string
	models  map[Role]string
}

// NewBuilder creates a [Builder]. The program is the binary name embedded in
// module-style invocations, normally "cairn".
func NewBuilder(program string, models map[Role]string) *Builder {
	return &Builder{program: program, models: models}
}

// Program returns the configured binary name.
func (b *Builder) Program() string {
	return b.program
}

// Model returns the model configured for a role, or "" when unassigned.
func (b *Builder) Model(role Role) string {
	return b.models[role]
}

// Step starts a re-invocation of one of the program's own skill subcommands,
// pre-populated with the step position flags every skill requires.
func (b *Builder) Step(skill string, step, total int) *Command {
	c := &Command{path: b.program + " " + skill}
	return c.WithInt("step", step).WithInt("total-steps", total)
}

// Target starts an invocation of a dispatch target. Bare names route through
// the run subcommand; path-style targets are invoked directly.
func (b *Builder) Target(target string, step, total int) *Command {
	c := &Command{path: b.invocation(target)}
	return c.WithInt("step", step).WithInt("total-steps", total)
}

func (b *Builder) invocation(target string) string {
	if strings.ContainsAny(target, `/\`) {
		return target
	}
	return b.program + " run " + target
}

// Block renders a dispatch as an embeddable pseudo-XML action block. The
// model attribute is omitted when no model is assigned to the role.
func (b *Builder) Block(d Dispatch) []string {
	attrs := []render.Attr{{Key: "agent", Value: string(d.Role)}}
	if model := b.Model(d.Role); model != "" {
		attrs = append(attrs, render.Attr{Key: "model", Value: model})
	}
	el := render.Element{Name: "dispatch", Attrs: attrs}

	if len(d.Context) > 0 {
		ctx := render.Element{Name: "context"}
		for _, v := range d.Context {
			ctx.Children = append(ctx.Children, render.Element{
				Name:  "var",
				Attrs: []render.Attr{{Key: "name", Value: v.Name}},
				Lines: []string{v.Desc},
			})
		}
		el.Children = append(el.Children, ctx)
	}

	if d.Command != nil {
		el.Children = append(el.Children,
			render.Element{Name: "instructions", Lines: []string{
				"Fill every context variable above with a real value when you write the sub-agent prompt.",
				"The sub-agent must run the command below first and follow its output exactly.",
			}},
			render.Element{Name: "command", Lines: []string{d.Command.String()}},
		)
		return el.BlockLines()
	}

	constraints := render.Element{Name: "constraints"}
	for _, c := range d.Constraints {
		constraints.Lines = append(constraints.Lines, "- "+c)
	}
	el.Children = append(el.Children,
		render.Element{Name: "instructions", Lines: []string{
			"No scripted workflow backs this dispatch. Brief the sub-agent with the context above.",
			"The sub-agent improvises within the constraints below and reports back when finished.",
		}},
		constraints,
	)
	return el.BlockLines()
}
