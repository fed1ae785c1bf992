package memory

import (
	"time"
)

// Kind separates durable facts from TTL-bound episodic observations.
type Kind string

const (
	KindFactual  Kind = "factual"
	KindEpisodic Kind = "episodic"
)

// Status is the memory lifecycle state. Merged rows are never resurrected.
type Status string

const (
	StatusActive      Status = "active"
	StatusHistorical  Status = "historical"
	StatusConflicting Status = "conflicting"
	StatusMerged      Status = "merged"
	StatusSupporting  Status = "supporting"
)

// Confidence sources.
const (
	SourceExplicit  = "explicit"
	SourceImplicit  = "implicit"
	SourceDerived   = "derived"
	SourceValidated = "validated"
	SourceInferred  = "inferred"
)

// Event types appended to the memory event log.
const (
	EventExtracted  = "extracted"
	EventReinforced = "reinforced"
	EventRetrieved  = "retrieved"
	EventMerged     = "merged"
	EventConflicted = "conflicted"
	EventDeprecated = "deprecated"
)

// SemanticDupDistance is the cosine distance below which a new fact is
// treated as a restatement of an existing one and reinforces it in place.
const SemanticDupDistance = 0.12

// EpisodicTTL maps an episodic scope to its lifetime.
var EpisodicTTL = map[string]time.Duration{
	"session":    time.Hour,
	"multi_turn": 6 * time.Hour,
	"task":       48 * time.Hour,
}

// Memory is one long-term memory row.
type Memory struct {
	ID               string
	UserID           string
	Kind             Kind
	Category         string
	Topic            string
	Fact             string
	Importance       float64
	Confidence       float64
	ConfidenceSource string
	Frequency        int
	Status           Status
	Embedding        []float32
	Metadata         map[string]any
	ExpiresAt        *time.Time
	CreatedAt        time.Time
	LastUpdated      time.Time
}

// ScoredMemory is a memory plus its cosine distance to a query embedding.
type ScoredMemory struct {
	Memory
	Distance float64
}

// Event is one append-only entry in the memory event log.
type Event struct {
	MemoryID       string
	EventType      string
	Source         string
	SignalStrength float64
	RawContext     string
}
