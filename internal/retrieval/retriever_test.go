package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mnemo/internal/memory"
)

func TestCapForKnownAndUnlistedCategories(t *testing.T) {
	assert.Equal(t, 3, capFor(IntentExploratory, "technical_context"))
	assert.Equal(t, 2, capFor(IntentFocused, "technical_context"))
	assert.Equal(t, 1, capFor(IntentMinimal, "technical_context"))
	assert.Equal(t, 1, capFor(IntentExploratory, "something_else"))
	assert.Equal(t, 1, capFor(IntentMinimal, "problem_domain"))
}

func TestScoreRowComposition(t *testing.T) {
	row := memory.ScoredMemory{
		Memory: memory.Memory{
			Fact:       "the team deploys on kubernetes",
			Importance: 5,
			Confidence: 0.8,
		},
		Distance: 0.4,
	}

	score := scoreRow(row, true, nil)
	// 2 (topic) + 0.6 (proximity) + 0.5 (importance) + 0.8 (confidence)
	assert.InDelta(t, 3.9, score, 1e-9)

	score = scoreRow(row, false, nil)
	assert.InDelta(t, 1.9, score, 1e-9)
}

func TestScoreRowDistanceSaturatesAtOne(t *testing.T) {
	row := memory.ScoredMemory{
		Memory:   memory.Memory{Importance: 0, Confidence: 0},
		Distance: 1.8,
	}
	assert.InDelta(t, 0.0, scoreRow(row, false, nil), 1e-9)
}

func TestScoreRowEpisodicBoost(t *testing.T) {
	row := memory.ScoredMemory{
		Memory: memory.Memory{
			Fact:       "current_task: migrating billing service to kubernetes",
			Importance: 0,
			Confidence: 0.7,
		},
		Distance: 1.0,
	}
	episodic := []memory.Memory{
		{Fact: "migrating billing service", Confidence: 0.9},
	}

	boosted := scoreRow(row, false, episodic)
	plain := scoreRow(row, false, nil)
	assert.InDelta(t, 1.5, boosted-plain, 1e-9)

	// low-confidence episodic rows never boost
	episodic[0].Confidence = 0.5
	assert.InDelta(t, plain, scoreRow(row, false, episodic), 1e-9)
}
