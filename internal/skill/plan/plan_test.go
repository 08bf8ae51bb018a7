package plan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cairn/internal/config"
	"cairn/internal/render"
	"cairn/internal/skill"
	"cairn/internal/skill/execute"
	"cairn/internal/workflow"
)

func newEnv(t *testing.T, base string) *skill.Env {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Artifacts.BasePath = base
	cfg.Resources.Dirs = []string{filepath.Join(base, ".cairn", "conventions")}
	env, err := skill.NewEnv(context.Background(), cfg, skill.MustRegistry(New(), execute.New()))
	require.NoError(t, err)
	return env
}

func writeDoc(t *testing.T, base, name, body string) {
	t.Helper()
	dir := filepath.Join(base, ".cairn", "conventions")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := fmt.Sprintf("---\nname: %s\ndescription: %s test document\n---\n\n%s\n", name, name, body)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644))
}

func run(t *testing.T, env *skill.Env, inv workflow.Invocation) string {
	t.Helper()
	inv.Skill = "plan"
	inv.TotalSteps = 4
	out, err := skill.Run(env, New(), inv, render.ModeText)
	require.NoError(t, err)
	return out
}

func TestTableShape(t *testing.T) {
	s := New()
	assert.Equal(t, "plan", s.Name)
	assert.Equal(t, 4, s.Table.Len())

	for id := 1; id <= 4; id++ {
		st, err := s.Table.Step(id)
		require.NoError(t, err)
		assert.Nil(t, st.Gate, "plan has no gates")
	}
}

func TestStep1_CertainSkipsInvestigation(t *testing.T) {
	env := newEnv(t, t.TempDir())

	out := run(t, env, workflow.Invocation{Step: 1, Confidence: workflow.ConfidenceCertain})

	assert.Contains(t, out, "Confidence is certain: skip fresh investigation.")
	assert.Contains(t, out, "NEXT: cairn plan --step 2 --total-steps 4")
	assert.NotContains(t, out, "Re-run this step")
}

func TestStep1_MediumRunsTargetedPass(t *testing.T) {
	env := newEnv(t, t.TempDir())

	out := run(t, env, workflow.Invocation{Step: 1, Confidence: workflow.ConfidenceMedium})

	assert.Contains(t, out, "Confidence is medium: run a targeted pass.")
	assert.Contains(t, out, "NEXT: cairn plan --step 2 --total-steps 4")
	assert.NotContains(t, out, "Re-run this step")
}

func TestStep1_LowConfidenceOffersRerun(t *testing.T) {
	env := newEnv(t, t.TempDir())

	for _, conf := range []workflow.Confidence{workflow.ConfidenceUnset, workflow.ConfidenceExploring, workflow.ConfidenceLow} {
		out := run(t, env, workflow.Invocation{Step: 1, Confidence: conf})

		assert.Contains(t, out, "survey broadly before drafting anything")
		assert.Contains(t, out,
			`cairn plan --step 1 --total-steps 4 --confidence "{updated-confidence}" --thoughts "{what-you-learned}"`)
		assert.Contains(t, out, "NEXT: cairn plan --step 2 --total-steps 4")
	}
}

func TestStep2_EmbedsPlanFormat(t *testing.T) {
	base := t.TempDir()
	writeDoc(t, base, "plan-format", "Milestones carry id, title, status.")
	env := newEnv(t, base)

	out := run(t, env, workflow.Invocation{Step: 2})

	assert.Contains(t, out, "Shape the draft to the house plan format:")
	assert.Contains(t, out, "Milestones carry id, title, status.")
	assert.Contains(t, out, "NEXT: cairn plan --step 3 --total-steps 4")
}

func TestStep2_MissingFormatDocBlocks(t *testing.T) {
	env := newEnv(t, t.TempDir())

	out := run(t, env, workflow.Invocation{Step: 2})

	assert.Contains(t, out, "<escalate reason=")
	assert.Contains(t, out, "plan-format")
	assert.NotContains(t, out, "NEXT:")
}

func TestStep4_HandsOffToExecute(t *testing.T) {
	base := t.TempDir()
	env := newEnv(t, base)

	out := run(t, env, workflow.Invocation{Step: 4})

	assert.Contains(t, out, fmt.Sprintf("Write the final plan to %s.", filepath.Join(base, ".cairn", "plan.json")))
	assert.Contains(t, out, "Suggest the caller continue with:")
	assert.Contains(t, out, "cairn run execute --step 1 --total-steps 13")
	assert.Contains(t, out, "WORKFLOW COMPLETE")
}

func TestStep4_ForwardsPlanOverride(t *testing.T) {
	env := newEnv(t, t.TempDir())

	out := run(t, env, workflow.Invocation{Step: 4, PlanPath: "docs/plan.json"})

	assert.Contains(t, out, "Write the final plan to docs/plan.json.")
	assert.Contains(t, out, "cairn run execute --step 1 --total-steps 13 --plan docs/plan.json")
}

func TestThoughtsForwardOnLinearSteps(t *testing.T) {
	env := newEnv(t, t.TempDir())

	out := run(t, env, workflow.Invocation{Step: 3, Thoughts: "milestone two may split"})

	assert.Contains(t, out, `NEXT: cairn plan --step 4 --total-steps 4 --thoughts "milestone two may split"`)
}
