package epistemic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedRuleSet(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, set.Rules)

	for i := 1; i < len(set.Rules); i++ {
		assert.LessOrEqual(t, set.Rules[i-1].Priority, set.Rules[i].Priority)
	}
}

func TestForScopeIncludesGlobal(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)

	rules := set.ForScope(ScopeMemoryWrite)
	ids := map[string]bool{}
	for _, r := range rules {
		ids[r.ID] = true
	}
	assert.True(t, ids["inv-user-scoped"], "global rules apply everywhere")
	assert.True(t, ids["inv-confidence-bounds"])
	assert.False(t, ids["heu-recent-over-stale"], "retrieval rules stay out of the write scope")
}

func TestAssertAllowedPassesValidWrite(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)
	engine := NewEngine(set, nil)

	err = engine.AssertAllowed(ScopeMemoryWrite, CheckContext{
		"user_id":    "u1",
		"confidence": 0.9,
		"fact":       "prefers short emails",
	})
	assert.NoError(t, err)
}

func TestAssertAllowedBlocksViolations(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)
	engine := NewEngine(set, nil)

	var violation *ViolationError

	err = engine.AssertAllowed(ScopeMemoryWrite, CheckContext{
		"confidence": 0.9,
		"fact":       "prefers short emails",
	})
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "inv-user-scoped", violation.Rule.ID)

	err = engine.AssertAllowed(ScopeMemoryWrite, CheckContext{
		"user_id":    "u1",
		"confidence": 1.3,
		"fact":       "prefers short emails",
	})
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "inv-confidence-bounds", violation.Rule.ID)

	err = engine.AssertAllowed(ScopeMemoryWrite, CheckContext{
		"user_id":    "u1",
		"confidence": 0.9,
		"fact":       "   ",
	})
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "inv-nonempty-fact", violation.Rule.ID)
}

func TestPromptSectionRendersMustAndShould(t *testing.T) {
	set, err := Load()
	require.NoError(t, err)
	engine := NewEngine(set, nil)

	section := engine.PromptSection(ScopeReasoning)
	assert.Contains(t, section, "MUST: Never present remembered context")
	assert.Contains(t, section, "SHOULD: Inject only the remembered context")
	// invariants are enforced in code, not rendered
	assert.NotContains(t, section, "scoped to a single user")
}
