package epistemic

import (
	"fmt"
	"strings"

	"mnemo/internal/logging"
)

// CheckContext carries the facts an invariant check inspects.
type CheckContext map[string]any

// CheckFunc evaluates one invariant against a context. A non-nil error is a
// violation.
type CheckFunc func(ctx CheckContext) error

// ViolationError reports which rule blocked an action.
type ViolationError struct {
	Rule   Rule
	Detail string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("epistemic invariant %s violated: %s", e.Rule.ID, e.Detail)
}

// Engine enforces invariants pre-action and renders advisory rules into
// prompts. Invariant checks are bound by rule id; an invariant without a
// registered check cannot be evaluated and is skipped with a warning.
type Engine struct {
	rules  *RuleSet
	checks map[string]CheckFunc
	logger logging.Logger
}

func NewEngine(rules *RuleSet, logger logging.Logger) *Engine {
	e := &Engine{
		rules:  rules,
		checks: map[string]CheckFunc{},
		logger: logging.OrNop(logger),
	}
	e.registerBuiltins()
	return e
}

// RegisterCheck binds an evaluable check to an invariant rule id.
func (e *Engine) RegisterCheck(ruleID string, check CheckFunc) {
	e.checks[ruleID] = check
}

func (e *Engine) registerBuiltins() {
	e.RegisterCheck("inv-user-scoped", func(ctx CheckContext) error {
		userID, _ := ctx["user_id"].(string)
		if userID == "" {
			return fmt.Errorf("no user id in scope")
		}
		return nil
	})
	e.RegisterCheck("inv-confidence-bounds", func(ctx CheckContext) error {
		conf, ok := ctx["confidence"].(float64)
		if !ok || conf < 0 || conf > 1 {
			return fmt.Errorf("confidence %v out of [0,1]", ctx["confidence"])
		}
		return nil
	})
	e.RegisterCheck("inv-nonempty-fact", func(ctx CheckContext) error {
		fact, _ := ctx["fact"].(string)
		if strings.TrimSpace(fact) == "" {
			return fmt.Errorf("empty fact statement")
		}
		return nil
	})
}

// AssertAllowed runs every invariant visible to the scope, in priority
// order, and returns the first violation.
func (e *Engine) AssertAllowed(scope Scope, ctx CheckContext) error {
	for _, rule := range e.rules.ForScope(scope) {
		if rule.Category != CategoryInvariant {
			continue
		}
		check, ok := e.checks[rule.ID]
		if !ok {
			e.logger.Warn("invariant %s has no registered check, skipping", rule.ID)
			continue
		}
		if err := check(ctx); err != nil {
			return &ViolationError{Rule: rule, Detail: err.Error()}
		}
	}
	return nil
}

// PromptSection renders the scope's principles and heuristics as MUST and
// SHOULD lines for the system prompt. Invariants are enforced in code, not
// delegated to the model.
func (e *Engine) PromptSection(scope Scope) string {
	var must, should []string
	for _, rule := range e.rules.ForScope(scope) {
		switch rule.Category {
		case CategoryPrinciple:
			must = append(must, rule.Statement)
		case CategoryHeuristic:
			should = append(should, rule.Statement)
		}
	}
	if len(must) == 0 && len(should) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Operating Rules\n")
	for _, line := range must {
		b.WriteString("- MUST: " + line + "\n")
	}
	for _, line := range should {
		b.WriteString("- SHOULD: " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
