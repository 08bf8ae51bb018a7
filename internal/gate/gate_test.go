package gate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cairn/internal/dispatch"
)

func spotCheck() Config {
	return Config{
		Name:     "spot-check",
		WorkStep: 2,
		PassStep: 4,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
		SelfFix:  true,
	}
}

func finalApproval() Config {
	return Config{
		Name:     "final-approval",
		WorkStep: 11,
		PassStep: 0,
		Verifier: "review",
		FixRole:  dispatch.RoleDeveloper,
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pass", input: "pass", want: StatusPass},
		{name: "fail", input: "fail", want: StatusFail},
		{name: "empty is unset", input: "", want: StatusUnset},
		{name: "unknown", input: "maybe", wantErr: true},
		{name: "case sensitive", input: "PASS", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePass(t *testing.T) {
	out, err := Resolve(spotCheck(), QRState{Iteration: 1, Status: StatusPass}, DefaultAdvisoryThreshold)
	require.NoError(t, err)

	assert.Equal(t, 4, out.Next)
	assert.False(t, out.Terminal)
	assert.False(t, out.FixMode)
	assert.Equal(t, 1, out.Iteration)
	assert.False(t, out.Advise)
}

func TestResolvePassTerminal(t *testing.T) {
	out, err := Resolve(finalApproval(), QRState{Iteration: 2, Status: StatusPass}, DefaultAdvisoryThreshold)
	require.NoError(t, err)

	assert.True(t, out.Terminal)
	assert.Equal(t, 0, out.Next)
	assert.Equal(t, 2, out.Iteration)
}

func TestResolveFailIncrementsIteration(t *testing.T) {
	out, err := Resolve(spotCheck(), QRState{Iteration: 1, Status: StatusFail}, DefaultAdvisoryThreshold)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Next)
	assert.True(t, out.FixMode)
	assert.Equal(t, 2, out.Iteration)
	assert.False(t, out.Advise)
}

// The advisory appears exactly when the observed round reaches the threshold,
// never before, and stays on for later rounds. There is no hard cap.
func TestResolveAdvisoryThreshold(t *testing.T) {
	tests := []struct {
		round  int
		advise bool
	}{
		{round: 1, advise: false},
		{round: 2, advise: false},
		{round: 3, advise: true},
		{round: 4, advise: true},
		{round: 9, advise: true},
	}

	for _, tt := range tests {
		out, err := Resolve(spotCheck(), QRState{Iteration: tt.round, Status: StatusFail}, DefaultAdvisoryThreshold)
		require.NoError(t, err)
		assert.Equal(t, tt.advise, out.Advise, "round %d", tt.round)
		assert.Equal(t, tt.round+1, out.Iteration, "round %d", tt.round)
		assert.True(t, out.FixMode, "round %d", tt.round)
	}
}

func TestResolveMissingVerdict(t *testing.T) {
	_, err := Resolve(spotCheck(), QRState{Iteration: 1}, DefaultAdvisoryThreshold)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerdictRequired))
}

func TestResolveNormalizesRound(t *testing.T) {
	// Iteration 0 (flag omitted) counts as round 1.
	out, err := Resolve(spotCheck(), QRState{Status: StatusFail}, DefaultAdvisoryThreshold)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Iteration)

	// A non-positive threshold falls back to the default.
	out, err = Resolve(spotCheck(), QRState{Iteration: 3, Status: StatusFail}, 0)
	require.NoError(t, err)
	assert.True(t, out.Advise)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1, QRState{}.Round())
	assert.Equal(t, 1, QRState{Iteration: -2}.Round())
	assert.Equal(t, 5, QRState{Iteration: 5}.Round())
}
