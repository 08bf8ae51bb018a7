package workflow

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"cairn/internal/gate"
)

// Confidence is the self-assessed certainty ladder some skills key their
// early steps on.
type Confidence string

const (
	ConfidenceUnset     Confidence = ""
	ConfidenceExploring Confidence = "exploring"
	ConfidenceLow       Confidence = "low"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceHigh      Confidence = "high"
	ConfidenceCertain   Confidence = "certain"
)

var confidenceRank = map[Confidence]int{
	ConfidenceExploring: 1,
	ConfidenceLow:       2,
	ConfidenceMedium:    3,
	ConfidenceHigh:      4,
	ConfidenceCertain:   5,
}

// ParseConfidence validates a --confidence value. The empty string parses to
// [ConfidenceUnset]; skills treat unset as exploring.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if c == ConfidenceUnset {
		return ConfidenceUnset, nil
	}
	if _, ok := confidenceRank[c]; !ok {
		return "", errors.Errorf("unknown confidence %q (valid: exploring, low, medium, high, certain)", s)
	}
	return c, nil
}

// AtLeast reports whether c sits at or above min on the ladder. Unset ranks
// below exploring.
func (c Confidence) AtLeast(min Confidence) bool {
	return confidenceRank[c] >= confidenceRank[min]
}

// Invocation is the immutable context of one CLI call. The CLI layer parses
// and validates every flag exactly once; everything downstream reads these
// typed fields and never re-parses strings.
type Invocation struct {
	// Skill is the skill name as invoked, echoed into follow-up commands.
	Skill string

	// Step and TotalSteps are the required position flags. TotalSteps must
	// equal the skill's table size; see [Invocation.Validate].
	Step       int
	TotalSteps int

	// Gate holds the verification flags (--qr-iteration, --qr-status,
	// --qr-fail).
	Gate gate.QRState

	// Confidence is the --confidence ladder value, when the skill takes one.
	Confidence Confidence

	// Iteration is the bounded retry counter (--iteration) some skills use
	// for their own loops, distinct from gate fix rounds.
	Iteration int

	// Thoughts is the accumulated reasoning passed with --thoughts. The
	// framework treats it as opaque text: echoed into follow-up commands,
	// never interpreted.
	Thoughts string

	// Milestones is the parsed --milestones selection, in flag order.
	Milestones []int

	// PlanPath is an explicit --plan override for the plan file location.
	PlanPath string

	// Phase names the verification report a review invocation writes
	// (--phase), defaulting to the skill name.
	Phase string
}

// Validate checks the invocation against a skill's table before any
// resolution runs. Both failures are usage errors: the caller supplied flags
// that cannot address the table.
func (inv Invocation) Validate(r *Registry) error {
	if inv.Step < 1 || inv.Step > r.Len() {
		return errors.Wrapf(ErrStepOutOfRange, "skill %s: step %d of %d", r.Name(), inv.Step, r.Len())
	}
	if inv.TotalSteps != r.Len() {
		return errors.Errorf("skill %s: --total-steps %d does not match the table (%d steps)", r.Name(), inv.TotalSteps, r.Len())
	}
	return nil
}

// ParseMilestones parses a comma-separated --milestones value into ordered
// ids. An empty value means "no explicit selection" and parses to nil.
func ParseMilestones(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Errorf("invalid milestone id %q", p)
		}
		if n < 1 {
			return nil, errors.Errorf("milestone ids start at 1, got %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}

// FormatMilestones renders a milestone selection back into --milestones form.
func FormatMilestones(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// truncationMark is appended when a thoughts payload is cut.
const truncationMark = " ...[truncated]"

// TruncateThoughts bounds a thoughts payload for echo into follow-up
// commands. Payloads over the byte limit are cut at a rune boundary and
// marked; shorter payloads pass through untouched.
func TruncateThoughts(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMark
}
