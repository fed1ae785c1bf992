package cognition

// Source classifies how a signal was obtained.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceImplicit Source = "implicit"
	SourceDerived  Source = "derived"
)

// Role is the epistemic role of a signal. Persona-role signals come from
// explicit persona extraction and bypass the learning path entirely.
type Role string

const (
	RolePersona   Role = "persona"
	RoleLearnable Role = "learnable"
)

// Action is the cognition verdict on a signal.
type Action string

const (
	ActionCommit            Action = "COMMIT"
	ActionPartialCommit     Action = "PARTIAL_COMMIT"
	ActionProvisionalCommit Action = "PROVISIONAL_COMMIT"
	ActionDefer             Action = "DEFER"
	ActionReject            Action = "REJECT"
)

// Target names where a committed or deferred signal should land.
type Target string

const (
	TargetPersona    Target = "persona"
	TargetRuntime    Target = "runtime"
	TargetPatternLog Target = "pattern_log"
	TargetNone       Target = ""
)

// Signal is a candidate update fed to cognition. Signals are never mutated;
// frequency enrichment happens on a copy.
type Signal struct {
	Category       string
	Field          string
	Value          any
	BaseConfidence float64
	Source         Source
	Role           Role
	Frequency      int
}

// Decision is cognition's verdict on a single signal. Every consumed signal
// produces exactly one decision.
type Decision struct {
	Action     Action
	Target     Target
	Scope      []string
	Confidence float64
	Reason     string
}

// Committed reports whether the decision commits its scope.
func (d Decision) Committed() bool {
	return d.Action == ActionCommit || d.Action == ActionPartialCommit
}
