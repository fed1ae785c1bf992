package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors keyed by text.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 4 }

func newFakeClassifier(t *testing.T) (*Classifier, *fakeEmbedder) {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float32{}, fallback: []float32{0, 0, 0, 1}}
	axes := map[Intent][]float32{
		IntentExploratory: {1, 0, 0, 0},
		IntentFocused:     {0, 1, 0, 0},
		IntentMinimal:     {0, 0, 1, 0},
	}
	for intent, templates := range prototypeTemplates {
		for _, tmpl := range templates {
			embedder.vectors[tmpl] = axes[intent]
		}
	}

	classifier, err := NewClassifier(context.Background(), embedder, nil)
	require.NoError(t, err)
	return classifier, embedder
}

func TestClassifyPicksClosestPrototype(t *testing.T) {
	classifier, embedder := newFakeClassifier(t)
	embedder.vectors["give me the full picture"] = []float32{0.9, 0.1, 0, 0}

	intent, err := classifier.Classify(context.Background(), "give me the full picture")
	require.NoError(t, err)
	assert.Equal(t, IntentExploratory, intent)
}

func TestClassifyFallsBackToMinimal(t *testing.T) {
	classifier, _ := newFakeClassifier(t)

	// the fallback vector is orthogonal to every prototype
	intent, err := classifier.Classify(context.Background(), "completely unrelated")
	require.NoError(t, err)
	assert.Equal(t, IntentMinimal, intent)
}
