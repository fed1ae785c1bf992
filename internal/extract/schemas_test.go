package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnemo/internal/llm"
	"mnemo/internal/stm"
)

func TestTurnIntentValidateCollapsesBadRoute(t *testing.T) {
	intent := TurnIntent{
		Route: RouteIntent{Route: "teleport", Confidence: 0.9},
	}
	require.NoError(t, intent.Validate())
	assert.Equal(t, RouteCurrentContext, intent.Route.Route)
	assert.Zero(t, intent.Route.Confidence)
}

func TestTurnIntentValidateKeepsGoodRoute(t *testing.T) {
	intent := TurnIntent{
		STM:   stm.Intent{ShouldWrite: true, StateType: stm.StateGoal, Statement: "ship it", Confidence: 0.8},
		Route: RouteIntent{Route: RouteEdit, Confidence: 0.7},
	}
	require.NoError(t, intent.Validate())
	assert.Equal(t, RouteEdit, intent.Route.Route)
}

func TestTurnIntentDecodeFromModelOutput(t *testing.T) {
	raw := "```json\n{\"stm_intent\":{\"should_write\":true,\"state_type\":\"decision\",\"statement\":\"use postgres\",\"confidence\":0.85},\"route_intent\":{\"route\":\"current_context\",\"confidence\":0.9}}\n```"

	var intent TurnIntent
	require.NoError(t, llm.DecodeStructured(raw, &intent))
	assert.True(t, stm.Accept(intent.STM))
	assert.Equal(t, RouteCurrentContext, intent.Route.Route)
}

func TestSignalBatchValidateFilters(t *testing.T) {
	batch := SignalBatch{Signals: []RawSignal{
		{Field: "tone", Value: "casual", Confidence: 0.9, Source: "explicit"},
		{Field: "", Value: "x", Confidence: 0.9, Source: "explicit"},
		{Field: "role", Value: nil, Confidence: 0.9, Source: "explicit"},
		{Field: "voice", Value: "warm", Confidence: 1.2, Source: "explicit"},
		{Field: "style", Value: "punchy", Confidence: 0.8, Source: "telepathy"},
	}}

	require.NoError(t, batch.Validate())
	require.Len(t, batch.Signals, 2)
	assert.Equal(t, "tone", batch.Signals[0].Field)
	// unknown sources degrade to implicit
	assert.Equal(t, "implicit", batch.Signals[1].Source)
}

func TestSignalBatchValidateEmptyIsError(t *testing.T) {
	batch := SignalBatch{}
	assert.Error(t, batch.Validate())
}

func TestMemoryPromptEnumeratesFactCategories(t *testing.T) {
	for _, category := range []string{
		"technical_context", "problem_domain", "constraint", "preference", "expertise",
	} {
		assert.Contains(t, memorySystemPrompt, category)
	}
}

func TestMemoryBatchValidate(t *testing.T) {
	batch := MemoryBatch{
		Facts: []RawFact{
			{Category: "preference", Topic: "email_length", Statement: "prefers short emails", Importance: 5, Confidence: 0.9},
			{Category: "preference", Topic: "x", Statement: "", Confidence: 0.9},
			{Category: "preference", Topic: "y", Statement: "z", Confidence: 1.5},
			{Category: "constraint", Topic: "tone", Statement: "no slang", Importance: 99, Confidence: 0.9},
		},
		Episodic: []RawEpisodic{
			{ContextType: "current_task", Key: "task", Value: "launch email", Scope: "task", Confidence: 0.8},
			{ContextType: "current_task", Key: "", Value: "x", Scope: "task"},
			{ContextType: "blocker", Key: "ci", Value: "flaky", Scope: "forever", Confidence: 0.7},
		},
	}

	require.NoError(t, batch.Validate())
	require.Len(t, batch.Facts, 2)
	// out-of-range importance resets to the default
	assert.Equal(t, float64(1), batch.Facts[1].Importance)
	require.Len(t, batch.Episodic, 2)
	// unknown scopes shorten to session
	assert.Equal(t, "session", batch.Episodic[1].Scope)
}
