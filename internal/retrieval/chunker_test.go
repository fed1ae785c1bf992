package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkQuerySplitsOnSentencesAndConjunctions(t *testing.T) {
	chunks := ChunkQuery("write the launch email for our kubernetes migration. keep it short and mention the maintenance window next tuesday")

	assert.Equal(t, []string{
		"write the launch email for our kubernetes migration",
		"keep it short",
		"mention the maintenance window next tuesday",
	}, chunks)
}

func TestChunkQueryDropsShortFragments(t *testing.T) {
	// "keep it" and "short" fall under the length floor
	chunks := ChunkQuery("keep it. short and do the whole thing properly")
	assert.Equal(t, []string{"do the whole thing properly"}, chunks)
}

func TestChunkQueryEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkQuery(""))
	assert.Empty(t, ChunkQuery("ok. yes"))
}

func TestChunkQueryDoesNotSplitInsideWords(t *testing.T) {
	chunks := ChunkQuery("brand new standalone handbook for operators")
	assert.Equal(t, []string{"brand new standalone handbook for operators"}, chunks)
}

func TestTopicMatches(t *testing.T) {
	tokens := queryTokens("Deploying to Kubernetes next week")

	assert.True(t, topicMatches("kubernetes", tokens))
	assert.True(t, topicMatches("deployment_kubernetes", tokens))
	assert.False(t, topicMatches("billing", tokens))
}
