package cognition

import (
	"context"
	"fmt"
	"reflect"

	"mnemo/internal/logging"
)

// PatternLogger records learnable decisions and answers recurrence queries.
// Persona-role signals are never pattern-logged.
type PatternLogger interface {
	Record(ctx context.Context, userID string, sig Signal, dec Decision) error
	CountOccurrences(ctx context.Context, userID, category, field string, value any) (int, error)
}

// Engine turns extracted signals into decisions. Decide is pure; Run adds
// frequency enrichment and decision logging around it.
type Engine struct {
	patterns PatternLogger
	logger   logging.Logger
}

func NewEngine(patterns PatternLogger, logger logging.Logger) *Engine {
	return &Engine{patterns: patterns, logger: logging.OrNop(logger)}
}

// Decide maps one signal to one decision. It never returns an error: an
// internal failure collapses to REJECT with a reasoning_error reason so a
// single bad signal cannot take down the batch.
func Decide(sig Signal) (dec Decision) {
	defer func() {
		if r := recover(); r != nil {
			dec = Decision{Action: ActionReject, Target: TargetNone, Reason: "reasoning_error"}
		}
	}()

	// Explicit persona statements are authoritative. They skip the policy
	// table and commit unconditionally.
	if sig.Role == RolePersona {
		return Decision{
			Action:     ActionCommit,
			Target:     TargetPersona,
			Scope:      []string{sig.Field},
			Confidence: 1.0,
			Reason:     "explicit_persona_statement",
		}
	}

	policy, ok := PolicyFor(sig.Field)
	if !ok {
		return Decision{
			Action: ActionDefer,
			Target: TargetPatternLog,
			Scope:  []string{sig.Field},
			Reason: "unknown_field",
		}
	}

	if sig.BaseConfidence < policy.MinConfidence {
		return Decision{
			Action:     ActionReject,
			Target:     TargetNone,
			Scope:      []string{sig.Field},
			Confidence: sig.BaseConfidence,
			Reason:     fmt.Sprintf("confidence %.2f below floor %.2f", sig.BaseConfidence, policy.MinConfidence),
		}
	}

	commitTarget := TargetRuntime
	if policy.PersonaEligible {
		commitTarget = TargetPersona
	}

	explicit := sig.Source == SourceExplicit
	recurred := policy.MinFreq > 0 && sig.Frequency >= policy.MinFreq

	switch policy.Mode {
	case ModeExplicit:
		if explicit {
			return commit(sig, commitTarget, false, "explicit_statement")
		}
		return Decision{
			Action:     ActionReject,
			Target:     TargetNone,
			Scope:      []string{sig.Field},
			Confidence: sig.BaseConfidence,
			Reason:     "requires_explicit_statement",
		}

	case ModeImplicit:
		if recurred {
			return commit(sig, commitTarget, true, "recurrence_threshold_met")
		}
		return provisional(sig, policy)

	case ModeHybrid:
		if explicit {
			return commit(sig, commitTarget, false, "explicit_statement")
		}
		if recurred {
			return commit(sig, commitTarget, true, "recurrence_threshold_met")
		}
		return provisional(sig, policy)

	case ModeExplicitOrN:
		if explicit {
			return commit(sig, commitTarget, false, "explicit_statement")
		}
		if recurred {
			return commit(sig, commitTarget, true, "recurrence_threshold_met")
		}
		return provisional(sig, policy)

	default:
		return Decision{Action: ActionReject, Target: TargetNone, Reason: "reasoning_error"}
	}
}

// provisional holds a below-threshold signal in the runtime scope until
// recurrence settles it one way or the other.
func provisional(sig Signal, policy FieldPolicy) Decision {
	return Decision{
		Action:     ActionProvisionalCommit,
		Target:     TargetRuntime,
		Scope:      []string{sig.Field},
		Confidence: sig.BaseConfidence,
		Reason:     fmt.Sprintf("seen %d of %d", sig.Frequency, policy.MinFreq),
	}
}

// commit builds a commit decision. Recurrence-driven commits of list-valued
// fields merge additively instead of overwriting, which is what
// PARTIAL_COMMIT signals downstream.
func commit(sig Signal, target Target, byRecurrence bool, reason string) Decision {
	action := ActionCommit
	if byRecurrence && isList(sig.Value) {
		action = ActionPartialCommit
	}
	return Decision{
		Action:     action,
		Target:     target,
		Scope:      []string{sig.Field},
		Confidence: sig.BaseConfidence,
		Reason:     reason,
	}
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Slice
}

// Run decides a batch of signals for one user. Learnable signals are
// frequency-enriched from the pattern log before deciding and every learnable
// decision is recorded back into it. Logging failures degrade to a warning;
// they never block the turn.
func (e *Engine) Run(ctx context.Context, userID string, signals []Signal) []Decision {
	decisions := make([]Decision, 0, len(signals))
	for _, sig := range signals {
		if sig.Role != RolePersona && e.patterns != nil {
			prior, err := e.patterns.CountOccurrences(ctx, userID, sig.Category, sig.Field, sig.Value)
			if err != nil {
				e.logger.Warn("pattern log count failed for %s.%s: %v", sig.Category, sig.Field, err)
			} else if prior+1 > sig.Frequency {
				sig.Frequency = prior + 1
			}
		}

		dec := Decide(sig)
		e.logger.Debug("cognition: %s.%s source=%s conf=%.2f freq=%d -> %s (%s)",
			sig.Category, sig.Field, sig.Source, sig.BaseConfidence, sig.Frequency, dec.Action, dec.Reason)

		if sig.Role != RolePersona && e.patterns != nil {
			if err := e.patterns.Record(ctx, userID, sig, dec); err != nil {
				e.logger.Warn("pattern log record failed for %s.%s: %v", sig.Category, sig.Field, err)
			}
		}
		decisions = append(decisions, dec)
	}
	return decisions
}
