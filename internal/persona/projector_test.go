package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnemo/internal/cognition"
)

func TestProjectKeepsOnlyCommittedPersonaFields(t *testing.T) {
	signals := []cognition.Signal{
		{Field: "tone", Value: "casual"},
		{Field: "role", Value: "CTO"},
		{Field: "language", Value: "german"},
	}
	decisions := []cognition.Decision{
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.9},
		{Action: cognition.ActionReject, Target: cognition.TargetNone},
		{Action: cognition.ActionProvisionalCommit, Target: cognition.TargetRuntime, Confidence: 0.9},
	}

	fragment := Project(signals, decisions)
	require.NotNil(t, fragment)
	require.NotNil(t, fragment.Tone)
	assert.Equal(t, "casual", fragment.Tone.Tone)
	assert.Nil(t, fragment.UserIdentity)
	assert.Nil(t, fragment.Language)
}

func TestProjectRuntimeCommitNeverReachesPersona(t *testing.T) {
	signals := []cognition.Signal{{Field: "technical_context", Value: "kubernetes"}}
	decisions := []cognition.Decision{
		{Action: cognition.ActionCommit, Target: cognition.TargetRuntime, Confidence: 0.9},
	}
	assert.Nil(t, Project(signals, decisions))
}

func TestProjectBlockConfidenceIsLowestContributor(t *testing.T) {
	signals := []cognition.Signal{
		{Field: "tone", Value: "casual"},
		{Field: "voice", Value: "first_person"},
	}
	decisions := []cognition.Decision{
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.95},
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.82},
	}

	fragment := Project(signals, decisions)
	require.NotNil(t, fragment)
	require.NotNil(t, fragment.Tone)
	assert.InDelta(t, 0.82, fragment.Tone.Confidence, 1e-9)
}

func TestProjectCoercesValues(t *testing.T) {
	signals := []cognition.Signal{
		{Field: "use_examples", Value: true},
		{Field: "products", Value: []any{"widgets", "gadgets"}},
		{Field: "constraints", Value: "never mention pricing"},
	}
	decisions := []cognition.Decision{
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.9},
		{Action: cognition.ActionPartialCommit, Target: cognition.TargetPersona, Confidence: 0.9},
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.96},
	}

	fragment := Project(signals, decisions)
	require.NotNil(t, fragment)
	require.NotNil(t, fragment.WritingStyle)
	require.NotNil(t, fragment.WritingStyle.UseExamples)
	assert.True(t, *fragment.WritingStyle.UseExamples)
	require.NotNil(t, fragment.CompanyProducts)
	assert.Equal(t, []string{"widgets", "gadgets"}, fragment.CompanyProducts.Products)
	require.NotNil(t, fragment.Constraints)
	assert.Equal(t, []string{"never mention pricing"}, fragment.Constraints.Constraints)
}

func TestProjectUnknownFieldIgnored(t *testing.T) {
	signals := []cognition.Signal{{Field: "shoe_size", Value: "42"}}
	decisions := []cognition.Decision{
		{Action: cognition.ActionCommit, Target: cognition.TargetPersona, Confidence: 0.9},
	}
	assert.Nil(t, Project(signals, decisions))
}
