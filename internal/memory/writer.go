package memory

import (
	"context"
	"fmt"
	"time"

	"mnemo/internal/embedding"
	"mnemo/internal/logging"
)

// Fact is one extracted factual statement headed for long-term memory.
type Fact struct {
	Category         string
	Topic            string
	Statement        string
	Importance       float64
	Confidence       float64
	ConfidenceSource string
	RawContext       string
}

// EpisodicObservation is a short-lived contextual observation.
type EpisodicObservation struct {
	ContextType string
	Key         string
	Value       string
	Scope       string // session | multi_turn | task
	Confidence  float64
}

// WriteResult reports what a write batch did. Per-item failures are
// collected, not fatal.
type WriteResult struct {
	Inserted   int
	Reinforced int
	Failed     int
	Errors     []string
}

// Writer is the long-term memory ingestion path: embed, dedupe against the
// nearest active fact, then reinforce or insert.
type Writer struct {
	store    *Store
	embedder embedding.Embedder
	logger   logging.Logger
}

func NewWriter(store *Store, embedder embedding.Embedder, logger logging.Logger) *Writer {
	return &Writer{store: store, embedder: embedder, logger: logging.OrNop(logger)}
}

// WriteFacts persists a batch of factual statements for one user. Each fact
// is embedded and compared against the user's nearest active factual memory:
// within SemanticDupDistance the existing row is reinforced in place,
// otherwise a fresh active row is inserted. Both paths append an extracted
// event. One bad fact never aborts the batch.
func (w *Writer) WriteFacts(ctx context.Context, userID string, facts []Fact) WriteResult {
	var result WriteResult
	for _, fact := range facts {
		if err := w.writeFact(ctx, userID, fact, &result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", fact.Category, fact.Topic, err))
			w.logger.Warn("fact write failed for %s %s/%s: %v", userID, fact.Category, fact.Topic, err)
		}
	}
	return result
}

func (w *Writer) writeFact(ctx context.Context, userID string, fact Fact, result *WriteResult) error {
	if fact.Statement == "" {
		return fmt.Errorf("empty statement")
	}

	emb, err := w.embedder.Embed(ctx, fact.Statement)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	nearest, distance, err := w.store.NearestActiveFactual(ctx, userID, emb)
	if err != nil {
		return err
	}

	if nearest != nil && distance < SemanticDupDistance {
		if err := w.store.Reinforce(ctx, nearest.ID, fact.Confidence, fact.RawContext); err != nil {
			return err
		}
		if err := w.appendExtracted(ctx, nearest.ID, fact); err != nil {
			return err
		}
		result.Reinforced++
		w.logger.Debug("reinforced %s (distance %.4f) for %s", nearest.ID, distance, userID)
		return nil
	}

	source := fact.ConfidenceSource
	if source == "" {
		source = SourceImplicit
	}
	id, err := w.store.Insert(ctx, &Memory{
		UserID:           userID,
		Kind:             KindFactual,
		Category:         fact.Category,
		Topic:            fact.Topic,
		Fact:             fact.Statement,
		Importance:       clampImportance(fact.Importance),
		Confidence:       fact.Confidence,
		ConfidenceSource: source,
		Frequency:        1,
		Status:           StatusActive,
		Embedding:        emb,
	})
	if err != nil {
		return err
	}
	if err := w.appendExtracted(ctx, id, fact); err != nil {
		return err
	}
	result.Inserted++
	return nil
}

// Factual extraction events carry the upstream source label: the facts come
// out of the chat LLM, not the writer itself.
const factEventSource = "llm"

func (w *Writer) appendExtracted(ctx context.Context, memoryID string, fact Fact) error {
	return w.store.AppendEvent(ctx, extractedEvent(memoryID, fact))
}

func extractedEvent(memoryID string, fact Fact) Event {
	return Event{
		MemoryID:       memoryID,
		EventType:      EventExtracted,
		Source:         factEventSource,
		SignalStrength: fact.Confidence,
		RawContext:     fact.RawContext,
	}
}

// WriteEpisodic persists short-lived observations with a scope-derived TTL.
// Episodic rows never deduplicate against factual rows.
func (w *Writer) WriteEpisodic(ctx context.Context, userID string, observations []EpisodicObservation) WriteResult {
	var result WriteResult
	for _, obs := range observations {
		if obs.Key == "" || obs.Value == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: missing key or value", obs.ContextType))
			continue
		}

		ttl, ok := EpisodicTTL[obs.Scope]
		if !ok {
			ttl = EpisodicTTL["session"]
		}
		expires := time.Now().Add(ttl)

		id, err := w.store.Insert(ctx, &Memory{
			UserID:           userID,
			Kind:             KindEpisodic,
			Category:         obs.ContextType,
			Topic:            obs.Key,
			Fact:             fmt.Sprintf("%s: %s", obs.Key, obs.Value),
			Importance:       1.0,
			Confidence:       obs.Confidence,
			ConfidenceSource: SourceImplicit,
			Frequency:        1,
			Status:           StatusActive,
			Metadata: map[string]any{
				"scope":  obs.Scope,
				"source": "episodic_extraction",
			},
			ExpiresAt: &expires,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", obs.ContextType, obs.Key, err))
			w.logger.Warn("episodic write failed for %s %s/%s: %v", userID, obs.ContextType, obs.Key, err)
			continue
		}

		if err := w.store.AppendEvent(ctx, Event{
			MemoryID:       id,
			EventType:      EventExtracted,
			Source:         "episodic_extraction",
			SignalStrength: obs.Confidence,
		}); err != nil {
			w.logger.Warn("episodic event append failed for %s: %v", id, err)
		}
		result.Inserted++
	}
	return result
}

// clampImportance keeps importance within (0, 10]. Zero means the extractor
// omitted the field (JSON zero value), so it maps to the default 1, not to a
// stored importance of 0.
func clampImportance(v float64) float64 {
	switch {
	case v <= 0:
		return 1.0
	case v > 10:
		return 10
	default:
		return v
	}
}
