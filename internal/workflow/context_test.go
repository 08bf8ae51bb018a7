package workflow

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Confidence
		wantErr bool
	}{
		{name: "exploring", input: "exploring", want: ConfidenceExploring},
		{name: "certain", input: "certain", want: ConfidenceCertain},
		{name: "trims and lowers", input: " High ", want: ConfidenceHigh},
		{name: "empty is unset", input: "", want: ConfidenceUnset},
		{name: "unknown", input: "sure", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfidence(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfidenceAtLeast(t *testing.T) {
	assert.True(t, ConfidenceCertain.AtLeast(ConfidenceHigh))
	assert.True(t, ConfidenceMedium.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceLow.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceUnset.AtLeast(ConfidenceExploring))
}

func TestInvocationValidate(t *testing.T) {
	r := testTable(t)

	tests := []struct {
		name    string
		inv     Invocation
		wantErr string
	}{
		{name: "valid", inv: Invocation{Skill: "demo", Step: 1, TotalSteps: 5}},
		{name: "step zero", inv: Invocation{Skill: "demo", Step: 0, TotalSteps: 5}, wantErr: "outside the table range"},
		{name: "step past end", inv: Invocation{Skill: "demo", Step: 6, TotalSteps: 5}, wantErr: "outside the table range"},
		{name: "total mismatch", inv: Invocation{Skill: "demo", Step: 1, TotalSteps: 4}, wantErr: "does not match the table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Validate(r)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStepOutOfRangeSentinel(t *testing.T) {
	r := testTable(t)
	err := Invocation{Skill: "demo", Step: 9, TotalSteps: 5}.Validate(r)
	assert.True(t, errors.Is(err, ErrStepOutOfRange))
}

func TestParseMilestones(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty means no selection", input: "", want: nil},
		{name: "single", input: "3", want: []int{3}},
		{name: "ordered list", input: "2,5", want: []int{2, 5}},
		{name: "spaces tolerated", input: " 1 , 4 ", want: []int{1, 4}},
		{name: "non-numeric", input: "2,x", wantErr: true},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "negative rejected", input: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMilestones(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMilestones(t *testing.T) {
	assert.Equal(t, "", FormatMilestones(nil))
	assert.Equal(t, "2,5", FormatMilestones([]int{2, 5}))

	// Round-trips through the parser.
	ids, err := ParseMilestones(FormatMilestones([]int{1, 3, 10}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 10}, ids)
}

func TestTruncateThoughts(t *testing.T) {
	short := "fits as is"
	assert.Equal(t, short, TruncateThoughts(short, 320))

	long := strings.Repeat("a", 400)
	got := TruncateThoughts(long, 320)
	assert.True(t, strings.HasSuffix(got, "...[truncated]"))
	assert.Equal(t, strings.Repeat("a", 320), strings.TrimSuffix(got, truncationMark))

	// Never cuts through a multi-byte rune.
	multibyte := strings.Repeat("é", 200) // 2 bytes each
	cut := TruncateThoughts(multibyte, 321)
	trimmed := strings.TrimSuffix(cut, truncationMark)
	assert.True(t, len(trimmed) <= 321)
	assert.True(t, strings.HasSuffix(trimmed, "é"))

	// Zero or negative limit disables truncation.
	assert.Equal(t, long, TruncateThoughts(long, 0))
}
