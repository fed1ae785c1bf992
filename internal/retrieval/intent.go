package retrieval

import (
	"context"
	"fmt"

	"mnemo/internal/embedding"
	"mnemo/internal/logging"
)

// Intent is the breadth of retrieval a query calls for.
type Intent string

const (
	IntentExploratory Intent = "exploratory"
	IntentFocused     Intent = "focused"
	IntentMinimal     Intent = "minimal"
)

// minIntentScore is the floor below which classification falls back to
// minimal rather than guessing.
const minIntentScore = 0.25

// prototypeTemplates seed each intent's embedding prototype. The templates
// are fixed; the prototype is the normalized mean of their embeddings.
var prototypeTemplates = map[Intent][]string{
	IntentExploratory: {
		"give me a broad overview of this area",
		"tell me everything relevant to this topic",
		"what are the options and alternatives here",
		"help me understand the background and context",
	},
	IntentFocused: {
		"how do I do this specific thing",
		"fix this particular problem for me",
		"answer this direct question",
		"what is the exact setting I need",
	},
	IntentMinimal: {
		"yes please",
		"ok thanks",
		"sounds good, continue",
		"do it",
	},
}

// intentOrder keeps classification deterministic under score ties.
var intentOrder = []Intent{IntentExploratory, IntentFocused, IntentMinimal}

// Classifier assigns a retrieval intent to a query by cosine similarity to
// per-intent prototypes computed once at startup.
type Classifier struct {
	embedder   embedding.Embedder
	prototypes map[Intent][]float32
	logger     logging.Logger
}

// NewClassifier builds the prototypes. It needs the embedder once per
// template set and is meant to run at startup.
func NewClassifier(ctx context.Context, embedder embedding.Embedder, logger logging.Logger) (*Classifier, error) {
	prototypes := make(map[Intent][]float32, len(prototypeTemplates))
	for intent, templates := range prototypeTemplates {
		embs, err := embedder.EmbedBatch(ctx, templates)
		if err != nil {
			return nil, fmt.Errorf("embed %s prototypes: %w", intent, err)
		}
		proto := embedding.MeanPool(embs)
		if proto == nil {
			return nil, fmt.Errorf("no embeddings for %s prototypes", intent)
		}
		prototypes[intent] = proto
	}
	return &Classifier{
		embedder:   embedder,
		prototypes: prototypes,
		logger:     logging.OrNop(logger),
	}, nil
}

// Classify returns the intent whose prototype the query is closest to, or
// minimal when nothing is convincingly close.
func (c *Classifier) Classify(ctx context.Context, query string) (Intent, error) {
	emb, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return IntentMinimal, fmt.Errorf("embed query for intent: %w", err)
	}

	best := IntentMinimal
	bestScore := -1.0
	for _, intent := range intentOrder {
		score := embedding.Cosine(emb, c.prototypes[intent])
		if score > bestScore {
			best, bestScore = intent, score
		}
	}
	if bestScore < minIntentScore {
		best = IntentMinimal
	}
	c.logger.Debug("intent %s (score %.3f) for query %q", best, bestScore, truncateQuery(query))
	return best, nil
}

func truncateQuery(q string) string {
	if len(q) > 60 {
		return q[:60] + "..."
	}
	return q
}
