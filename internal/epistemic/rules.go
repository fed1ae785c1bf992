package epistemic

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Category separates enforceable invariants from advisory guidance.
type Category string

const (
	CategoryInvariant Category = "invariant"
	CategoryPrinciple Category = "principle"
	CategoryHeuristic Category = "heuristic"
)

// Scope names the pipeline stage a rule applies to.
type Scope string

const (
	ScopeMemoryWrite     Scope = "memory_write"
	ScopeMemoryRetrieval Scope = "memory_retrieval"
	ScopeReasoning       Scope = "reasoning"
	ScopeGlobal          Scope = "global"
)

// Rule is one entry in the versioned rule set.
type Rule struct {
	ID           string   `yaml:"id"`
	Category     Category `yaml:"category"`
	Scope        Scope    `yaml:"scope"`
	Priority     int      `yaml:"priority"`
	Overrideable bool     `yaml:"overrideable"`
	Statement    string   `yaml:"statement"`
	Rationale    string   `yaml:"rationale,omitempty"`
}

// RuleSet is the full versioned collection, ordered by priority.
type RuleSet struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

//go:embed rules.yaml
var rulesYAML []byte

// Load parses the embedded rule set and sorts it by priority, then id, so
// evaluation and rendering order never depend on file order.
func Load() (*RuleSet, error) {
	var set RuleSet
	if err := yaml.Unmarshal(rulesYAML, &set); err != nil {
		return nil, fmt.Errorf("parse epistemic rules: %w", err)
	}
	for i, r := range set.Rules {
		if r.ID == "" || r.Statement == "" {
			return nil, fmt.Errorf("epistemic rule %d missing id or statement", i)
		}
	}
	sort.SliceStable(set.Rules, func(i, j int) bool {
		if set.Rules[i].Priority != set.Rules[j].Priority {
			return set.Rules[i].Priority < set.Rules[j].Priority
		}
		return set.Rules[i].ID < set.Rules[j].ID
	})
	return &set, nil
}

// ForScope returns the rules visible to a scope: its own plus global.
func (s *RuleSet) ForScope(scope Scope) []Rule {
	var out []Rule
	for _, r := range s.Rules {
		if r.Scope == scope || r.Scope == ScopeGlobal {
			out = append(out, r)
		}
	}
	return out
}
