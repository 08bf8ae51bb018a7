package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cairn/internal/artifact"
	"cairn/internal/config"
)

func testApp(t *testing.T, base string) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Artifacts.BasePath = base
	cfg.Resources.Dirs = []string{filepath.Join(base, ".cairn", "conventions")}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := &App{Config: cfg, Skills: BuiltinSkills(), Stdout: stdout, Stderr: stderr}
	return app, stdout, stderr
}

func writePlan(t *testing.T, base string) {
	t.Helper()
	plan := &artifact.Plan{
		Goal: "Split the importer into fetch and decode stages",
		Milestones: []artifact.Milestone{
			{ID: 1, Title: "Extract the fetch stage"},
			{ID: 2, Title: "Extract the decode stage"},
		},
	}
	require.NoError(t, artifact.NewWriter(base).WritePlan(plan))
}

func TestPlanCertainNamesNextStep(t *testing.T) {
	app, stdout, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"plan", "--step", "1", "--total-steps", "4", "--confidence", "certain"})

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "plan step 1/4:")
	assert.Contains(t, out, "Confidence is certain")
	assert.Contains(t, out, "NEXT: cairn plan --step 2 --total-steps 4")
}

func TestExecuteGateFailRoutesToWorkStep(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)
	app, stdout, stderr := testApp(t, base)

	code := app.Run([]string{"execute", "--step", "3", "--total-steps", "13", "--qr-status", "fail"})

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "spot-check verification failed on round 1")
	assert.Contains(t, out, "NEXT: cairn execute --step 2 --total-steps 13 --qr-iteration 2 --qr-fail")
}

func TestExecuteFinalGatePassCompletes(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)
	app, stdout, _ := testApp(t, base)

	code := app.Run([]string{"execute", "--step", "13", "--total-steps", "13", "--qr-status", "pass"})

	require.Equal(t, 0, code)
	out := stdout.String()
	assert.Contains(t, out, "This was the final checkpoint.")
	assert.Contains(t, out, "WORKFLOW COMPLETE")
	assert.NotContains(t, out, "NEXT")
}

func TestExecuteMilestonesRejectBadToken(t *testing.T) {
	app, stdout, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"execute", "--step", "1", "--total-steps", "13", "--milestones", "1,a,3"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `invalid milestone id "a"`)
}

func TestGateStepRequiresVerdict(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)
	app, _, stderr := testApp(t, base)

	code := app.Run([]string{"execute", "--step", "3", "--total-steps", "13"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "--qr-status")
}

func TestStepOutOfRangeFails(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"plan", "--step", "5", "--total-steps", "4"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "step 5 of 4")
}

func TestTotalStepsMustMatchTable(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"plan", "--step", "1", "--total-steps", "9"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "--total-steps 9 does not match the table (4 steps)")
}

func TestMissingPositionFlagsFail(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"deepthink", "--step", "1"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "--step and --total-steps are required")
}

func TestInvalidConfidenceFails(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"plan", "--step", "1", "--total-steps", "4", "--confidence", "sure"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `unknown confidence "sure"`)
}

func TestIdenticalFlagsPrintIdenticalBytes(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)
	args := []string{"execute", "--step", "1", "--total-steps", "13", "--milestones", "1,2", "--thoughts", "keep the fetch API"}

	app1, out1, _ := testApp(t, base)
	require.Equal(t, 0, app1.Run(args))
	app2, out2, _ := testApp(t, base)
	require.Equal(t, 0, app2.Run(args))

	assert.Equal(t, out1.String(), out2.String())
}

func TestTagsFormatCarriesSameCommand(t *testing.T) {
	app, stdout, _ := testApp(t, t.TempDir())
	require.Equal(t, 0, app.Run([]string{"plan", "--step", "3", "--total-steps", "4"}))
	textNext := "cairn plan --step 4 --total-steps 4"
	assert.Contains(t, stdout.String(), "NEXT: "+textNext)

	app2, stdout2, _ := testApp(t, t.TempDir())
	require.Equal(t, 0, app2.Run([]string{"plan", "--step", "3", "--total-steps", "4", "--format", "tags"}))
	out := stdout2.String()
	assert.Contains(t, out, `<step_header script="plan" step="3" total="4">`)
	assert.Contains(t, out, "<invoke_after>"+textNext+"</invoke_after>")
}

func TestUnknownFormatFails(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"plan", "--step", "1", "--total-steps", "4", "--format", "xml"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `unknown output format "xml"`)
}

func TestRunResolvesAliasToCanonicalName(t *testing.T) {
	base := t.TempDir()
	writePlan(t, base)
	app, stdout, stderr := testApp(t, base)

	code := app.Run([]string{"run", "exec", "--step", "2", "--total-steps", "13"})

	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "execute step 2/13:")
	assert.Contains(t, out, "cairn run review --step 1 --total-steps 6 --phase spot-check")
	assert.Contains(t, out, "NEXT on pass: cairn execute --step 3 --total-steps 13 --qr-status pass")
}

func TestRunUnknownSkillFails(t *testing.T) {
	app, _, stderr := testApp(t, t.TempDir())

	code := app.Run([]string{"run", "bogus", "--step", "1", "--total-steps", "1"})

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `unknown skill "bogus"`)
}

func TestSkillsListsBuiltins(t *testing.T) {
	app, stdout, _ := testApp(t, t.TempDir())

	require.Equal(t, 0, app.Run([]string{"skills"}))

	out := stdout.String()
	assert.Contains(t, out, "Built-in skills")
	for _, name := range []string{"plan", "execute", "review", "refactor", "deepthink"} {
		assert.Contains(t, out, name)
	}
}

func TestDescribeShowsGatesAndPassPath(t *testing.T) {
	app, stdout, _ := testApp(t, t.TempDir())

	require.Equal(t, 0, app.Run([]string{"describe", "execute"}))

	out := stdout.String()
	assert.Contains(t, out, "execute (13 steps)")
	assert.Contains(t, out, "gate spot-check: pass -> step 4, fail -> step 2")
	assert.Contains(t, out, "gate final-approval: pass -> done, fail -> step 11")
	assert.Contains(t, out, "Pass path: 1 -> 2 -> 3 -> 4 -> 5 -> 6 -> 7 -> 8 -> 9 -> 10 -> 11 -> 12 -> 13")
}
