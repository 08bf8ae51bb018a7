package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PlanPathEnv overrides all plan path resolution when set.
const PlanPathEnv = "CAIRN_PLAN_PATH"

// ResolvePlanPath determines where the plan document lives.
//
// Resolution order:
//  1. CAIRN_PLAN_PATH environment variable (used as-is if set)
//  2. Explicit planPath parameter (config key or --plan flag)
//  3. Default: basePath/.cairn/plan.json
//
// The basePath is the project root directory. Pass empty string for the
// working directory. The planPath is an explicit override; pass empty string
// for the default location.
func ResolvePlanPath(basePath, planPath string) string {
	if envPath := os.Getenv(PlanPathEnv); envPath != "" {
		return envPath
	}
	if planPath != "" {
		return planPath
	}
	return filepath.Join(basePath, Dir, PlanFile)
}

// Reader loads plan and report documents from a project tree.
//
// Use [NewReader] for the default plan location or [NewReaderWithPath] when
// configuration or a --plan flag supplies an explicit path.
type Reader struct {
	basePath string
	planPath string
}

// NewReader creates a [Reader] rooted at basePath with the default plan
// location. The CAIRN_PLAN_PATH environment variable overrides it.
func NewReader(basePath string) *Reader {
	return &Reader{
		basePath: basePath,
		planPath: ResolvePlanPath(basePath, ""),
	}
}

// NewReaderWithPath creates a [Reader] with an explicit plan path. The
// CAIRN_PLAN_PATH environment variable still takes priority if set.
func NewReaderWithPath(basePath, planPath string) *Reader {
	return &Reader{
		basePath: basePath,
		planPath: ResolvePlanPath(basePath, planPath),
	}
}

// PlanPath returns the resolved plan document location.
func (r *Reader) PlanPath() string {
	return r.planPath
}

// ReportPath returns where the verification report for a phase lives.
func (r *Reader) ReportPath(phase string) string {
	return ReportPath(r.basePath, phase)
}

// Plan reads and parses the plan document.
func (r *Reader) Plan() (*Plan, error) {
	data, err := os.ReadFile(r.planPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read plan")
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrap(err, "failed to parse plan")
	}
	return &plan, nil
}

// Report reads and parses the verification report for a phase.
func (r *Reader) Report(phase string) (*Report, error) {
	data, err := os.ReadFile(r.ReportPath(phase))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s report", phase)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s report", phase)
	}
	return &report, nil
}
