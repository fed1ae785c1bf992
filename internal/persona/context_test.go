package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderContextOmitsConfidence(t *testing.T) {
	p := &Persona{
		UserIdentity: &IdentityBlock{Role: "CTO", Confidence: 0.93},
		Constraints:  &ConstraintsBlock{Constraints: []string{"no emojis"}, Confidence: 0.97},
	}

	rendered := RenderContext(p)
	assert.Contains(t, rendered, "Role: CTO")
	assert.Contains(t, rendered, "no emojis")
	assert.NotContains(t, rendered, "0.93")
	assert.NotContains(t, rendered, "confidence")
}

func TestRenderContextEmptyPersona(t *testing.T) {
	assert.Empty(t, RenderContext(nil))
	assert.Empty(t, RenderContext(&Persona{}))
}

func TestRenderContextSkipsEmptyBlocks(t *testing.T) {
	p := &Persona{
		Tone:     &ToneBlock{Tone: "direct"},
		Audience: &AudienceBlock{},
	}

	rendered := RenderContext(p)
	assert.Contains(t, rendered, "Tone: direct")
	assert.NotContains(t, rendered, "Audience")
}
