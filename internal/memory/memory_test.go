package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpisodicTTLValues(t *testing.T) {
	assert.Equal(t, time.Hour, EpisodicTTL["session"])
	assert.Equal(t, 6*time.Hour, EpisodicTTL["multi_turn"])
	assert.Equal(t, 48*time.Hour, EpisodicTTL["task"])
}

func TestClampImportance(t *testing.T) {
	assert.Equal(t, 1.0, clampImportance(0))
	assert.Equal(t, 1.0, clampImportance(-3))
	assert.Equal(t, 5.0, clampImportance(5))
	assert.Equal(t, 10.0, clampImportance(12))
}

func TestExtractedEventLabelsLLMSource(t *testing.T) {
	event := extractedEvent("mem-1", Fact{
		Confidence: 0.9,
		RawContext: "user said so",
	})

	assert.Equal(t, "mem-1", event.MemoryID)
	assert.Equal(t, EventExtracted, event.EventType)
	assert.Equal(t, "llm", event.Source)
	assert.Equal(t, 0.9, event.SignalStrength)
	assert.Equal(t, "user said so", event.RawContext)
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 500))
	assert.Equal(t, "ab", truncate("abcd", 2))

	long := ""
	for i := 0; i < 300; i++ {
		long += "日"
	}
	cut := truncate(long, 250)
	assert.Equal(t, 250, len([]rune(cut)))
}
