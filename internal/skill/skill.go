// Package skill ties the built-in guidance workflows to the services they
// resolve against.
//
// A [Skill] is one named workflow: a validated step table plus the resolver
// that turns an invocation into guidance. The [Registry] holds the built-in
// set and answers name and alias lookups for the CLI and for dispatch target
// resolution. The [Env] carries everything a resolver may consult: the
// dispatch builder, the convention library, the plan reader, and the project
// skill catalog.
//
// Resolvers are pure with respect to project state. They read the plan and
// report files through [Env] but never write them; the only output of a
// skill is the guidance document on stdout.
//
// Key types:
//   - [Skill] - One workflow: table, resolver, and dispatch defaults
//   - [Registry] - Name and alias lookup across the built-in skills
//   - [Env] - Shared services resolvers draw on
package skill

import (
	"strings"

	"github.com/pkg/errors"

	"cairn/internal/dispatch"
	"cairn/internal/render"
	"cairn/internal/workflow"
)

// ResolveFunc turns one invocation into the step's guidance. The invocation
// is validated against the skill's table before the resolver runs.
type ResolveFunc func(*Env, workflow.Invocation) (render.Guidance, error)

// Skill is one built-in guidance workflow.
type Skill struct {
	// Name is the canonical skill name, used as the subcommand and echoed
	// into every follow-up command.
	Name string

	// Aliases are alternate names accepted on lookup. Output always uses
	// the canonical name so identical work yields identical bytes.
	Aliases []string

	// Summary is the one-line description shown by the skills listing.
	Summary string

	// Role is the agent role that normally runs this skill when it is
	// dispatched as a sub-workflow.
	Role dispatch.Role

	// Table is the skill's validated step table.
	Table *workflow.Registry

	// Resolve produces guidance for one invocation.
	Resolve ResolveFunc
}

// Registry holds the built-in skills in registration order.
//
// Lookup is case-insensitive across names and aliases. Construct with
// [NewRegistry] or [MustRegistry].
type Registry struct {
	order  []*Skill
	byName map[string]*Skill
}

// NewRegistry builds a registry, rejecting duplicate names or aliases.
func NewRegistry(skills ...*Skill) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Skill)}
	for _, s := range skills {
		for _, name := range append([]string{s.Name}, s.Aliases...) {
			key := strings.ToLower(name)
			if _, exists := r.byName[key]; exists {
				return nil, errors.Errorf("skill name %q registered twice", key)
			}
			r.byName[key] = s
		}
		r.order = append(r.order, s)
	}
	return r, nil
}

// MustRegistry is [NewRegistry] for the static built-in set.
func MustRegistry(skills ...*Skill) *Registry {
	r, err := NewRegistry(skills...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve finds a skill by name or alias. Unknown names produce an error
// listing the valid set, with a did-you-mean hint when one is close.
func (r *Registry) Resolve(name string) (*Skill, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := r.byName[key]; ok {
		return s, nil
	}
	if hint := r.closest(key); hint != "" {
		return nil, errors.Errorf("unknown skill %q, did you mean %q? (available: %s)",
			name, hint, strings.Join(r.Names(), ", "))
	}
	return nil, errors.Errorf("unknown skill %q (available: %s)", name, strings.Join(r.Names(), ", "))
}

// closest scans for a name sharing text with the query. Registration order
// decides ties, so earlier skills win when several match.
func (r *Registry) closest(key string) string {
	if key == "" {
		return ""
	}
	for _, s := range r.order {
		for _, name := range append([]string{s.Name}, s.Aliases...) {
			name = strings.ToLower(name)
			if strings.HasPrefix(name, key) || strings.HasPrefix(key, name) {
				return s.Name
			}
		}
	}
	return ""
}

// All returns the skills in registration order.
func (r *Registry) All() []*Skill {
	return append([]*Skill(nil), r.order...)
}

// Names returns the canonical skill names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, s := range r.order {
		names[i] = s.Name
	}
	return names
}

// Run resolves one invocation against a skill and renders the stdout
// document. This is the single entry point the CLI commands share.
func Run(e *Env, s *Skill, inv workflow.Invocation, mode render.Mode) (string, error) {
	if err := inv.Validate(s.Table); err != nil {
		return "", err
	}
	g, err := s.Resolve(e, inv)
	if err != nil {
		return "", err
	}
	h := render.Header{Script: inv.Skill, Step: inv.Step, Total: inv.TotalSteps}
	return render.Render(mode, h, g), nil
}
