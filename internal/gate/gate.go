// Package gate models the verification checkpoints embedded in skill step
// tables.
//
// A gate sits between a work step and the step that follows it. The
// orchestrating agent dispatches a verifier, collects a pass/fail verdict,
// and re-invokes the gate step with --qr-status. [Resolve] turns that verdict
// into a routing outcome: advance on pass, return to the work step in fix
// mode on fail. The framework counts fix rounds but never caps them; once the
// round counter reaches the advisory threshold the guidance adds an explicit
// decision point instead of refusing to continue.
//
// Key types:
//   - [Config] - one checkpoint: work step, pass target, who fixes failures
//   - [QRState] - the verification flags of a single invocation
//   - [Outcome] - the resolved routing decision
package gate

import (
	"github.com/pkg/errors"

	"cairn/internal/dispatch"
)

// Status is a verification verdict as supplied by --qr-status.
type Status string

const (
	// StatusUnset means no verdict was supplied.
	StatusUnset Status = ""
	// StatusPass approves the work under review.
	StatusPass Status = "pass"
	// StatusFail rejects it and triggers a fix round.
	StatusFail Status = "fail"
)

// ParseStatus validates a --qr-status value. The empty string parses to
// [StatusUnset]; whether that is acceptable depends on the step being
// invoked, so the caller decides.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnset:
		return StatusUnset, nil
	case StatusPass:
		return StatusPass, nil
	case StatusFail:
		return StatusFail, nil
	}
	return "", errors.Errorf("invalid verification verdict %q (valid: pass, fail)", s)
}

// ErrVerdictRequired reports a gate step invoked without --qr-status. Gates
// cannot route without a verdict, so this is a usage error, not a prompt to
// guess.
var ErrVerdictRequired = errors.New("gate step requires --qr-status (pass or fail)")

// DefaultAdvisoryThreshold is the fix round at which gate guidance adds the
// continue/skip/abort decision point.
const DefaultAdvisoryThreshold = 3

// QRState carries the verification flags of one invocation. The zero value
// means round one, no verdict, not in fix mode.
type QRState struct {
	// Iteration is the current fix round, counted from 1. The caller echoes
	// it back on every retry; the framework never stores it.
	Iteration int

	// Status is the verdict supplied with --qr-status, if any.
	Status Status

	// Failed marks a work step re-entered to fix verifier findings.
	Failed bool
}

// Round returns the iteration normalized to at least 1.
func (s QRState) Round() int {
	if s.Iteration < 1 {
		return 1
	}
	return s.Iteration
}

// Config describes one verification checkpoint in a step table.
type Config struct {
	// Name identifies the checkpoint. It doubles as the report phase, so the
	// findings file for a "spot-check" gate is qr-spot-check.json.
	Name string

	// WorkStep is the step a failed verdict routes back to.
	WorkStep int

	// PassStep is the step a passing verdict advances to. Zero ends the
	// workflow.
	PassStep int

	// Verifier is the dispatch target that produces the verdict, normally
	// the built-in review skill. A project catalog entry of the same name
	// overrides it.
	Verifier string

	// FixRole is the agent role responsible for fixing failures.
	FixRole dispatch.Role

	// SelfFix, when true, has the orchestrating agent apply fixes itself
	// instead of dispatching a FixRole sub-agent.
	SelfFix bool
}

// Outcome is the resolved routing decision for one gate invocation.
type Outcome struct {
	// Next is the step to invoke next. Zero when Terminal.
	Next int

	// Terminal is set when a passing verdict ends the workflow.
	Terminal bool

	// FixMode is set on fail: the work step re-runs to address findings.
	FixMode bool

	// Iteration is the round number to embed in follow-up commands. It is
	// the observed round on pass and the incremented round on fail.
	Iteration int

	// Advise is set when the observed round has reached the advisory
	// threshold on a failing verdict.
	Advise bool
}

// Resolve maps a gate's configuration and the observed verdict to a routing
// outcome. A missing verdict returns [ErrVerdictRequired].
func Resolve(cfg Config, st QRState, threshold int) (Outcome, error) {
	if threshold < 1 {
		threshold = DefaultAdvisoryThreshold
	}
	round := st.Round()

	switch st.Status {
	case StatusPass:
		return Outcome{
			Next:      cfg.PassStep,
			Terminal:  cfg.PassStep == 0,
			Iteration: round,
		}, nil
	case StatusFail:
		return Outcome{
			Next:      cfg.WorkStep,
			FixMode:   true,
			Iteration: round + 1,
			Advise:    round >= threshold,
		}, nil
	}
	return Outcome{}, errors.WithStack(ErrVerdictRequired)
}
