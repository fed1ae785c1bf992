package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTakesIncomingWhenStoredAbsent(t *testing.T) {
	current := &Persona{}
	incoming := &Persona{
		Tone: &ToneBlock{Tone: "casual", Confidence: 0.5},
	}

	merged, changed := Merge(current, incoming)
	require.NotNil(t, merged.Tone)
	assert.Equal(t, "casual", merged.Tone.Tone)
	assert.Equal(t, []string{"tone"}, changed)
}

func TestMergeGateBlocksLowConfidenceOverwrite(t *testing.T) {
	current := &Persona{
		Tone: &ToneBlock{Tone: "formal", Confidence: 0.9},
	}
	incoming := &Persona{
		Tone: &ToneBlock{Tone: "casual", Confidence: 0.79},
	}

	merged, changed := Merge(current, incoming)
	assert.Equal(t, "formal", merged.Tone.Tone)
	assert.Empty(t, changed)
}

func TestMergeGatePassesAtThreshold(t *testing.T) {
	current := &Persona{
		Tone: &ToneBlock{Tone: "formal", Confidence: 0.9},
	}
	incoming := &Persona{
		Tone: &ToneBlock{Tone: "casual", Confidence: 0.80},
	}

	merged, changed := Merge(current, incoming)
	assert.Equal(t, "casual", merged.Tone.Tone)
	assert.Equal(t, []string{"tone"}, changed)
}

func TestMergeIsBlockAtomic(t *testing.T) {
	current := &Persona{
		Audience: &AudienceBlock{
			AudienceType:  "developers",
			AudienceLevel: "expert",
			Confidence:    0.9,
		},
	}
	incoming := &Persona{
		Audience: &AudienceBlock{AudienceType: "executives", Confidence: 0.95},
	}

	merged, _ := Merge(current, incoming)
	assert.Equal(t, "executives", merged.Audience.AudienceType)
	// the overwrite replaces the whole block, not individual fields
	assert.Empty(t, merged.Audience.AudienceLevel)
}

func TestMergeEmptyIncomingNeverOverwrites(t *testing.T) {
	current := &Persona{
		Language: &LanguageBlock{Language: "english", Confidence: 0.9},
	}

	merged, changed := Merge(current, &Persona{Language: &LanguageBlock{Confidence: 1.0}})
	assert.Equal(t, "english", merged.Language.Language)
	assert.Empty(t, changed)

	merged, changed = Merge(current, nil)
	assert.Equal(t, "english", merged.Language.Language)
	assert.Empty(t, changed)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	current := &Persona{
		Tone: &ToneBlock{Tone: "formal", Confidence: 0.9},
	}
	incoming := &Persona{
		Tone: &ToneBlock{Tone: "casual", Confidence: 0.95},
	}

	Merge(current, incoming)
	assert.Equal(t, "formal", current.Tone.Tone)
}
