package extract

import (
	"fmt"

	"mnemo/internal/stm"
)

// Routes a turn can take.
const (
	RouteCurrentContext = "current_context"
	RouteEdit           = "edit"
	RouteReference      = "reference"
	RouteSemanticLookup = "semantic_lookup"
)

var validRoutes = map[string]bool{
	RouteCurrentContext: true,
	RouteEdit:           true,
	RouteReference:      true,
	RouteSemanticLookup: true,
}

// RouteIntent is where the turn should be handled.
type RouteIntent struct {
	Route      string  `json:"route"`
	Confidence float64 `json:"confidence"`
}

// TurnIntent is the combined per-turn extraction: a routing decision that is
// always applied and an STM proposal that is gated downstream.
type TurnIntent struct {
	STM   stm.Intent  `json:"stm_intent"`
	Route RouteIntent `json:"route_intent"`
}

// Validate enforces the schema at the model boundary. A bad route collapses
// to current_context rather than failing the turn.
func (t *TurnIntent) Validate() error {
	if !validRoutes[t.Route.Route] {
		t.Route = RouteIntent{Route: RouteCurrentContext, Confidence: 0}
	}
	if t.Route.Confidence < 0 || t.Route.Confidence > 1 {
		t.Route.Confidence = 0
	}
	if t.STM.Confidence < 0 || t.STM.Confidence > 1 {
		return fmt.Errorf("stm confidence %v out of range", t.STM.Confidence)
	}
	return nil
}

// RawSignal is one extracted persona or behavior signal as the model emits
// it.
type RawSignal struct {
	Category   string  `json:"category"`
	Field      string  `json:"field"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Explicit   bool    `json:"explicit_persona_statement"`
}

// SignalBatch is the persona extraction output.
type SignalBatch struct {
	Signals []RawSignal `json:"signals"`
}

// Validate drops malformed entries instead of failing the batch.
func (b *SignalBatch) Validate() error {
	valid := b.Signals[:0]
	for _, s := range b.Signals {
		if s.Field == "" || s.Value == nil {
			continue
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			continue
		}
		switch s.Source {
		case "explicit", "implicit", "derived":
		default:
			s.Source = "implicit"
		}
		valid = append(valid, s)
	}
	b.Signals = valid
	if len(b.Signals) == 0 {
		return fmt.Errorf("no usable signals")
	}
	return nil
}

// RawFact is one extracted factual statement.
type RawFact struct {
	Category         string  `json:"category"`
	Topic            string  `json:"topic"`
	Statement        string  `json:"statement"`
	Importance       float64 `json:"importance"`
	Confidence       float64 `json:"confidence"`
	ConfidenceSource string  `json:"confidence_source"`
}

// RawEpisodic is one extracted short-lived observation.
type RawEpisodic struct {
	ContextType string  `json:"context_type"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Scope       string  `json:"scope"`
	Confidence  float64 `json:"confidence"`
}

// MemoryBatch is the long-term memory extraction output.
type MemoryBatch struct {
	Facts    []RawFact    `json:"facts"`
	Episodic []RawEpisodic `json:"episodic"`
}

// Validate drops malformed entries; an entirely empty batch is a
// nothing-extracted condition.
func (b *MemoryBatch) Validate() error {
	facts := b.Facts[:0]
	for _, f := range b.Facts {
		if f.Statement == "" || f.Category == "" || f.Topic == "" {
			continue
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			continue
		}
		if f.Importance < 0 || f.Importance > 10 {
			f.Importance = 1
		}
		facts = append(facts, f)
	}
	b.Facts = facts

	episodic := b.Episodic[:0]
	for _, e := range b.Episodic {
		if e.Key == "" || e.Value == "" {
			continue
		}
		switch e.Scope {
		case "session", "multi_turn", "task":
		default:
			e.Scope = "session"
		}
		episodic = append(episodic, e)
	}
	b.Episodic = episodic

	if len(b.Facts) == 0 && len(b.Episodic) == 0 {
		return fmt.Errorf("nothing extracted")
	}
	return nil
}
