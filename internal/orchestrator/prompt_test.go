package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mnemo/internal/memory"
	"mnemo/internal/retrieval"
	"mnemo/internal/stm"
)

func TestRenderContextOrdering(t *testing.T) {
	entries := []stm.Entry{
		{StateType: stm.StateDecision, Statement: "use postgres"},
	}
	result := retrieval.Result{
		Episodic: []memory.Memory{{Fact: "current_task: launch email"}},
		Factual: []memory.ScoredMemory{
			{Memory: memory.Memory{Category: "preference", Fact: "prefers short emails"}},
		},
	}

	rendered := renderContext(entries, result)
	working := strings.Index(rendered, "Working State")
	situation := strings.Index(rendered, "Current Situation")
	known := strings.Index(rendered, "Known Context")

	assert.GreaterOrEqual(t, working, 0)
	assert.Greater(t, situation, working, "episodic priming comes after working state")
	assert.Greater(t, known, situation, "grounding facts come last")
	assert.Contains(t, rendered, "[decision] use postgres")
	assert.Contains(t, rendered, "(preference) prefers short emails")
}

func TestRenderContextEmptySections(t *testing.T) {
	rendered := renderContext(nil, retrieval.Result{})
	assert.Empty(t, rendered)

	rendered = renderContext(nil, retrieval.Result{
		Episodic: []memory.Memory{{Fact: "blocker: flaky ci"}},
	})
	assert.Contains(t, rendered, "Current Situation")
	assert.NotContains(t, rendered, "Working State")
	assert.NotContains(t, rendered, "Known Context")
}

func TestRenderArtifactList(t *testing.T) {
	assert.Empty(t, renderArtifactList(nil))

	rendered := renderArtifactList([]artifactSummary{
		{ID: "a1", Title: "Launch email", Summary: "announcement draft"},
		{ID: "a2"},
	})
	assert.Contains(t, rendered, "a1 Launch email: announcement draft")
	assert.Contains(t, rendered, "- a2")
}

func TestRenderArtifactBody(t *testing.T) {
	rendered := renderArtifactBody("Launch email", "Dear all,")
	assert.Contains(t, rendered, "Document To Edit")
	assert.Contains(t, rendered, "Title: Launch email")
	assert.Contains(t, rendered, "Dear all,")
}
