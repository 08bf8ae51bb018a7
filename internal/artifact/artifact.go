// Package artifact defines the plan and verification-report files that
// skills share with the orchestrating agent.
//
// The files live under the project-local .cairn directory: plan.json holds
// the goal and its milestones, and qr-<phase>.json holds one verification
// gate's findings. Skills only ever read these files, and only to enrich
// guidance; the agents write them, following instructions the guidance
// spells out. A missing file is therefore normal early in a workflow and is
// reported, not fabricated.
//
// Key types:
//   - [Plan] / [Milestone] - the plan document
//   - [Report] / [Finding] - one gate's verification report
//   - [Reader] - resolves paths and loads both document kinds
package artifact

import (
	"path/filepath"
)

// Dir is the project-relative directory where skills keep shared state.
const Dir = ".cairn"

// PlanFile is the plan document name within [Dir].
const PlanFile = "plan.json"

// Milestone statuses a plan may carry. The set is advisory: unknown values
// round-trip untouched so agents can extend it.
const (
	MilestonePending = "pending"
	MilestoneActive  = "active"
	MilestoneDone    = "done"
)

// Milestone is one unit of plan work, sized to land in a single execute
// pass.
type Milestone struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Plan is the document the plan skill instructs the agent to write and the
// execute skill reads back.
type Plan struct {
	Goal       string      `json:"goal"`
	Milestones []Milestone `json:"milestones"`
}

// Milestone returns the milestone with the given id, if present.
func (p *Plan) Milestone(id int) (Milestone, bool) {
	for _, m := range p.Milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// Verdicts a verification report may carry.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

// Finding is one issue recorded by a verifier.
type Finding struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Note     string `json:"note"`
	Resolved bool   `json:"resolved,omitempty"`
}

// Report is the findings document a verification dispatch instructs the
// reviewer to write at qr-<phase>.json.
type Report struct {
	Phase     string    `json:"phase"`
	Verdict   string    `json:"verdict"`
	Iteration int       `json:"iteration,omitempty"`
	Findings  []Finding `json:"findings,omitempty"`
}

// Open returns the unresolved findings in report order.
func (r *Report) Open() []Finding {
	var open []Finding
	for _, f := range r.Findings {
		if !f.Resolved {
			open = append(open, f)
		}
	}
	return open
}

// ReportPath returns the verification report location for a phase under the
// given project root. Pass an empty basePath for the working directory.
func ReportPath(basePath, phase string) string {
	return filepath.Join(basePath, Dir, "qr-"+phase+".json")
}
