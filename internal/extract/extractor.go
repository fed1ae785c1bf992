package extract

import (
	"context"
	"errors"
	"fmt"

	"mnemo/internal/cognition"
	"mnemo/internal/llm"
	"mnemo/internal/logging"
	"mnemo/internal/memory"
)

// Extractor runs the structured extraction calls. "Nothing extracted" is a
// normal outcome everywhere, surfaced as empty results rather than errors.
type Extractor struct {
	client llm.Client
	logger logging.Logger
}

func NewExtractor(client llm.Client, logger logging.Logger) *Extractor {
	return &Extractor{client: client, logger: logging.OrNop(logger)}
}

// TurnIntent extracts the combined routing and STM proposal for one message.
// On failure it degrades to current_context with no STM write, so the
// response path never stalls on extraction.
func (e *Extractor) TurnIntent(ctx context.Context, userMessage, recentContext string) TurnIntent {
	prompt := "User message:\n" + userMessage
	if recentContext != "" {
		prompt = "Recent context:\n" + recentContext + "\n\n" + prompt
	}

	var intent TurnIntent
	err := llm.CompleteStructured(ctx, e.client, turnIntentSystemPrompt, prompt, &intent)
	if err != nil {
		if !errors.Is(err, llm.ErrNothingExtracted) {
			e.logger.Warn("turn intent extraction failed: %v", err)
		}
		return TurnIntent{Route: RouteIntent{Route: RouteCurrentContext}}
	}
	return intent
}

// PersonaSignals extracts profile and behavior signals from a turn and maps
// them into cognition's input shape.
func (e *Extractor) PersonaSignals(ctx context.Context, conversation string) ([]cognition.Signal, error) {
	var batch SignalBatch
	err := llm.CompleteStructured(ctx, e.client, personaSystemPrompt, conversation, &batch)
	if errors.Is(err, llm.ErrNothingExtracted) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persona extraction: %w", err)
	}

	signals := make([]cognition.Signal, 0, len(batch.Signals))
	for _, raw := range batch.Signals {
		role := cognition.RoleLearnable
		if raw.Explicit && raw.Source == "explicit" {
			role = cognition.RolePersona
		}
		signals = append(signals, cognition.Signal{
			Category:       raw.Category,
			Field:          raw.Field,
			Value:          raw.Value,
			BaseConfidence: raw.Confidence,
			Source:         cognition.Source(raw.Source),
			Role:           role,
			Frequency:      1,
		})
	}
	return signals, nil
}

// MemoryExtraction is what a turn contributes to long-term memory.
type MemoryExtraction struct {
	Facts    []memory.Fact
	Episodic []memory.EpisodicObservation
}

// MemoryFacts extracts durable facts and episodic observations from a turn.
func (e *Extractor) MemoryFacts(ctx context.Context, conversation string) (*MemoryExtraction, error) {
	var batch MemoryBatch
	err := llm.CompleteStructured(ctx, e.client, memorySystemPrompt, conversation, &batch)
	if errors.Is(err, llm.ErrNothingExtracted) {
		return &MemoryExtraction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory extraction: %w", err)
	}

	out := &MemoryExtraction{}
	for _, raw := range batch.Facts {
		out.Facts = append(out.Facts, memory.Fact{
			Category:         raw.Category,
			Topic:            raw.Topic,
			Statement:        raw.Statement,
			Importance:       raw.Importance,
			Confidence:       raw.Confidence,
			ConfidenceSource: raw.ConfidenceSource,
			RawContext:       conversation,
		})
	}
	for _, raw := range batch.Episodic {
		out.Episodic = append(out.Episodic, memory.EpisodicObservation{
			ContextType: raw.ContextType,
			Key:         raw.Key,
			Value:       raw.Value,
			Scope:       raw.Scope,
			Confidence:  raw.Confidence,
		})
	}
	return out, nil
}
