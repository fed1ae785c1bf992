package stm

import "time"

// StateType classifies a short-term memory entry.
type StateType string

const (
	StateGoal            StateType = "goal"
	StateDecision        StateType = "decision"
	StateConstraint      StateType = "constraint"
	StateApproval        StateType = "approval"
	StateRejection       StateType = "rejection"
	StateDirectionChange StateType = "direction_change"
	StateScope           StateType = "scope"
)

var validStateTypes = map[StateType]bool{
	StateGoal: true, StateDecision: true, StateConstraint: true,
	StateApproval: true, StateRejection: true, StateDirectionChange: true,
	StateScope: true,
}

// ValidStateType reports whether t is a known state type.
func ValidStateType(t StateType) bool { return validStateTypes[t] }

// Entry is one short-term working state record.
type Entry struct {
	ID         string
	UserID     string
	StateType  StateType
	Statement  string
	Rationale  string
	AppliesTo  string
	Supersedes string
	Confidence float64
	IsActive   bool
	CreatedAt  time.Time
}

// Intent is the extractor's proposal to write working state this turn.
type Intent struct {
	ShouldWrite bool      `json:"should_write"`
	StateType   StateType `json:"state_type,omitempty"`
	Statement   string    `json:"statement,omitempty"`
	Rationale   string    `json:"rationale,omitempty"`
	AppliesTo   string    `json:"applies_to,omitempty"`
	Supersedes  string    `json:"supersedes,omitempty"`
	Confidence  float64   `json:"confidence"`
}

// GateMinConfidence is the acceptance floor for proposed writes.
const GateMinConfidence = 0.6

// Accept is the write gate: only a complete, confident, well-typed proposal
// reaches the store.
func Accept(intent Intent) bool {
	return intent.ShouldWrite &&
		intent.StateType != "" &&
		ValidStateType(intent.StateType) &&
		intent.Statement != "" &&
		intent.Confidence >= GateMinConfidence
}
