// Package workflow provides the step-table framework every cairn skill is
// built on.
//
// A skill is a fixed, ordered table of steps. Each step routes in exactly one
// of three ways: linearly to the next step, on a verification verdict to a
// pass or fail target, or nowhere because the workflow ends there. Tables are
// validated once at construction and never mutate afterwards; every
// invocation resolves against the same table, so identical flags always
// produce identical routing.
//
// Key types:
//   - [Registry] - one skill's validated, immutable step table
//   - [Step] - a single step with its title, action lines, and route
//   - [Route] - the closed routing set: [Linear], [Branch], [Terminal]
//   - [Invocation] - the immutable context parsed from one CLI call
package workflow

import (
	"github.com/pkg/errors"

	"cairn/internal/gate"
)

// ErrStepOutOfRange reports a --step outside the table's 1..total range.
var ErrStepOutOfRange = errors.New("step is outside the table range")

// Route determines where a step hands control next. The set is closed:
// [Linear], [Branch], and [Terminal] are the only implementations.
type Route interface {
	isRoute()
}

// Linear advances to the next sequential step.
type Linear struct{}

// Branch routes on a verification verdict: Pass on "pass", Fail on "fail".
// A Pass of 0 ends the workflow.
type Branch struct {
	Pass int
	Fail int
}

// Terminal ends the workflow.
type Terminal struct{}

func (Linear) isRoute()   {}
func (Branch) isRoute()   {}
func (Terminal) isRoute() {}

// Step is one row of a skill's table.
//
// Actions and Forbidden hold the static instruction lines; skills append
// invocation-dependent lines during resolution. Gate is non-nil exactly on
// Branch-routed steps.
type Step struct {
	ID        int
	Title     string
	Actions   []string
	Forbidden []string
	Route     Route
	Gate      *gate.Config
}

// GateStep builds a verification checkpoint step. The branch route is derived
// from the gate config so the two can never disagree.
func GateStep(id int, title string, cfg gate.Config, actions ...string) Step {
	return Step{
		ID:      id,
		Title:   title,
		Actions: actions,
		Route:   Branch{Pass: cfg.PassStep, Fail: cfg.WorkStep},
		Gate:    &cfg,
	}
}

// Registry is one skill's validated step table. Construct with [NewRegistry]
// or [MustRegistry]; the table is immutable afterwards.
type Registry struct {
	name  string
	steps []Step
}

// NewRegistry validates a step table. Rules:
//   - ids are contiguous from 1
//   - every step has a route; only the last step may be [Terminal]-free of
//     successors (a [Linear] route on the last step runs off the table)
//   - [Branch] steps carry a gate config consistent with the route; the fail
//     target precedes the gate and the pass target advances past it (or is 0)
//   - gate configs appear only on [Branch] steps
func NewRegistry(name string, steps []Step) (*Registry, error) {
	if name == "" {
		return nil, errors.New("registry needs a skill name")
	}
	if len(steps) == 0 {
		return nil, errors.Errorf("skill %s: step table is empty", name)
	}

	total := len(steps)
	for i, st := range steps {
		if st.ID != i+1 {
			return nil, errors.Errorf("skill %s: step at index %d has id %d, want %d", name, i, st.ID, i+1)
		}
		if st.Title == "" {
			return nil, errors.Errorf("skill %s: step %d has no title", name, st.ID)
		}

		switch r := st.Route.(type) {
		case Linear:
			if st.ID == total {
				return nil, errors.Errorf("skill %s: step %d routes linearly past the final step", name, st.ID)
			}
			if st.Gate != nil {
				return nil, errors.Errorf("skill %s: step %d carries a gate config without a branch route", name, st.ID)
			}
		case Terminal:
			if st.Gate != nil {
				return nil, errors.Errorf("skill %s: step %d carries a gate config without a branch route", name, st.ID)
			}
		case Branch:
			cfg := st.Gate
			if cfg == nil {
				return nil, errors.Errorf("skill %s: step %d branches without a gate config", name, st.ID)
			}
			if cfg.Name == "" || cfg.Verifier == "" || cfg.FixRole == "" {
				return nil, errors.Errorf("skill %s: step %d gate config is incomplete", name, st.ID)
			}
			if r.Fail != cfg.WorkStep || r.Pass != cfg.PassStep {
				return nil, errors.Errorf("skill %s: step %d branch route disagrees with its gate config", name, st.ID)
			}
			if r.Fail < 1 || r.Fail >= st.ID {
				return nil, errors.Errorf("skill %s: step %d fail target %d must name an earlier step", name, st.ID, r.Fail)
			}
			if r.Pass != 0 && (r.Pass <= st.ID || r.Pass > total) {
				return nil, errors.Errorf("skill %s: step %d pass target %d must advance (or be 0 to finish)", name, st.ID, r.Pass)
			}
		case nil:
			return nil, errors.Errorf("skill %s: step %d has no route", name, st.ID)
		default:
			return nil, errors.Errorf("skill %s: step %d has an unrecognized route", name, st.ID)
		}
	}

	return &Registry{name: name, steps: steps}, nil
}

// MustRegistry is [NewRegistry] for package-level skill tables; it panics on
// an invalid table.
func MustRegistry(name string, steps []Step) *Registry {
	r, err := NewRegistry(name, steps)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the skill name the table was registered under.
func (r *Registry) Name() string {
	return r.name
}

// Len returns the number of steps in the table.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Step returns the step with the given 1-based id.
// Returns [ErrStepOutOfRange] when id is outside 1..[Registry.Len].
func (r *Registry) Step(id int) (Step, error) {
	if id < 1 || id > len(r.steps) {
		return Step{}, errors.Wrapf(ErrStepOutOfRange, "skill %s: step %d of %d", r.name, id, len(r.steps))
	}
	return r.steps[id-1], nil
}

// Steps returns a copy of the table in order.
func (r *Registry) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Next resolves where control goes after the given step.
//
// Linear steps ignore the verdict. Branch steps require one and return
// [gate.ErrVerdictRequired] without it. Terminal steps, and branch steps
// whose pass target is 0, report terminal = true.
func (r *Registry) Next(id int, verdict gate.Status) (next int, terminal bool, err error) {
	st, err := r.Step(id)
	if err != nil {
		return 0, false, err
	}

	switch route := st.Route.(type) {
	case Linear:
		return st.ID + 1, false, nil
	case Branch:
		switch verdict {
		case gate.StatusPass:
			if route.Pass == 0 {
				return 0, true, nil
			}
			return route.Pass, false, nil
		case gate.StatusFail:
			return route.Fail, false, nil
		}
		return 0, false, errors.Wrapf(gate.ErrVerdictRequired, "skill %s: step %d", r.name, id)
	case Terminal:
		return 0, true, nil
	}
	return 0, false, errors.Errorf("skill %s: step %d has no route", r.name, id)
}

// FixGate returns the gate whose fail target is the given work step, if any.
// Work steps use it to render fix-round context when re-entered with
// --qr-fail.
func (r *Registry) FixGate(workStep int) (gate.Config, bool) {
	for _, st := range r.steps {
		if st.Gate != nil && st.Gate.WorkStep == workStep {
			return *st.Gate, true
		}
	}
	return gate.Config{}, false
}

// Trace returns the pass-path preview: every step visited when each gate
// passes on the first round. Table validation guarantees pass routes advance,
// so the walk always terminates.
func (r *Registry) Trace() []Step {
	var out []Step
	id := 1
	for {
		st, err := r.Step(id)
		if err != nil {
			return out
		}
		out = append(out, st)
		next, terminal, err := r.Next(id, gate.StatusPass)
		if err != nil || terminal {
			return out
		}
		id = next
	}
}
