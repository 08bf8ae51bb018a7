package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `{
  "goal": "Add request tracing to the gateway",
  "milestones": [
    {"id": 1, "title": "Thread trace ids through the middleware", "status": "done"},
    {"id": 2, "title": "Propagate ids to downstream calls", "status": "active"},
    {"id": 3, "title": "Expose trace ids in error responses"}
  ]
}`

const sampleReport = `{
  "phase": "spot-check",
  "verdict": "fail",
  "iteration": 2,
  "findings": [
    {"id": "SC-1", "severity": "major", "note": "middleware drops the id on retries"},
    {"id": "SC-2", "severity": "minor", "note": "missing test for empty header", "resolved": true}
  ]
}`

func writePlan(t *testing.T, base string) string {
	t.Helper()
	dir := filepath.Join(base, Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, PlanFile)
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o644))
	return path
}

func TestResolvePlanPath(t *testing.T) {
	t.Run("default location", func(t *testing.T) {
		got := ResolvePlanPath("/repo", "")
		assert.Equal(t, filepath.Join("/repo", ".cairn", "plan.json"), got)
	})

	t.Run("explicit override", func(t *testing.T) {
		got := ResolvePlanPath("/repo", "/elsewhere/plan.json")
		assert.Equal(t, "/elsewhere/plan.json", got)
	})

	t.Run("env wins over everything", func(t *testing.T) {
		t.Setenv(PlanPathEnv, "/env/plan.json")
		got := ResolvePlanPath("/repo", "/elsewhere/plan.json")
		assert.Equal(t, "/env/plan.json", got)
	})

	t.Run("empty base means working directory", func(t *testing.T) {
		got := ResolvePlanPath("", "")
		assert.Equal(t, filepath.Join(".cairn", "plan.json"), got)
	})
}

func TestReadPlan(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)

	plan, err := NewReader(base).Plan()
	require.NoError(t, err)

	assert.Equal(t, "Add request tracing to the gateway", plan.Goal)
	require.Len(t, plan.Milestones, 3)

	m, ok := plan.Milestone(2)
	require.True(t, ok)
	assert.Equal(t, "Propagate ids to downstream calls", m.Title)
	assert.Equal(t, MilestoneActive, m.Status)

	_, ok = plan.Milestone(9)
	assert.False(t, ok)
}

func TestReadPlanMissing(t *testing.T) {
	_, err := NewReader(t.TempDir()).Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read plan")
}

func TestReadPlanMalformed(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, Dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, Dir, PlanFile), []byte("{not json"), 0o644))

	_, err := NewReader(base).Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse plan")
}

func TestReadReport(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, Dir), 0o755))
	require.NoError(t, os.WriteFile(ReportPath(base, "spot-check"), []byte(sampleReport), 0o644))

	report, err := NewReader(base).Report("spot-check")
	require.NoError(t, err)

	assert.Equal(t, "spot-check", report.Phase)
	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, 2, report.Iteration)

	open := report.Open()
	require.Len(t, open, 1)
	assert.Equal(t, "SC-1", open[0].ID)
}

func TestReportPathPerPhase(t *testing.T) {
	r := NewReader("/repo")
	assert.Equal(t, filepath.Join("/repo", ".cairn", "qr-spot-check.json"), r.ReportPath("spot-check"))
	assert.Equal(t, filepath.Join("/repo", ".cairn", "qr-final-approval.json"), r.ReportPath("final-approval"))
}

func TestReaderWithExplicitPlanPath(t *testing.T) {
	base := t.TempDir()
	custom := filepath.Join(base, "alt-plan.json")
	require.NoError(t, os.WriteFile(custom, []byte(samplePlan), 0o644))

	r := NewReaderWithPath(base, custom)
	assert.Equal(t, custom, r.PlanPath())

	plan, err := r.Plan()
	require.NoError(t, err)
	assert.Len(t, plan.Milestones, 3)
}
