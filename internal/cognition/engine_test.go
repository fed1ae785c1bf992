package cognition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecidePersonaShortCircuit(t *testing.T) {
	dec := Decide(Signal{
		Field:          "favorite_unknown_field",
		Value:          "anything",
		BaseConfidence: 0.1,
		Source:         SourceExplicit,
		Role:           RolePersona,
	})

	assert.Equal(t, ActionCommit, dec.Action)
	assert.Equal(t, TargetPersona, dec.Target)
	assert.Equal(t, []string{"favorite_unknown_field"}, dec.Scope)
	assert.Equal(t, 1.0, dec.Confidence)
}

func TestDecideUnknownFieldDefers(t *testing.T) {
	dec := Decide(Signal{
		Field:          "shoe_size",
		Value:          "42",
		BaseConfidence: 0.99,
		Source:         SourceExplicit,
		Role:           RoleLearnable,
	})

	assert.Equal(t, ActionDefer, dec.Action)
	assert.Equal(t, TargetPatternLog, dec.Target)
}

func TestDecideSafetyGateRejects(t *testing.T) {
	dec := Decide(Signal{
		Field:          "tone",
		Value:          "casual",
		BaseConfidence: 0.5,
		Source:         SourceExplicit,
		Role:           RoleLearnable,
	})

	assert.Equal(t, ActionReject, dec.Action)
	assert.Equal(t, TargetNone, dec.Target)
}

func TestDecideConstraintNeedsHigherConfidence(t *testing.T) {
	sig := Signal{
		Field:          "constraints",
		Value:          []string{"never mention competitors"},
		BaseConfidence: 0.9,
		Source:         SourceExplicit,
		Role:           RoleLearnable,
	}
	assert.Equal(t, ActionReject, Decide(sig).Action)

	sig.BaseConfidence = 0.96
	dec := Decide(sig)
	assert.Equal(t, ActionCommit, dec.Action)
	assert.Equal(t, TargetPersona, dec.Target)
}

func TestDecideExplicitMode(t *testing.T) {
	sig := Signal{
		Field:          "language",
		Value:          "german",
		BaseConfidence: 0.9,
		Source:         SourceExplicit,
		Role:           RoleLearnable,
		Frequency:      1,
	}
	dec := Decide(sig)
	assert.Equal(t, ActionCommit, dec.Action)
	assert.Equal(t, TargetPersona, dec.Target)
	assert.Equal(t, 0.9, dec.Confidence)

	sig.Source = SourceImplicit
	sig.Frequency = 50
	assert.Equal(t, ActionReject, Decide(sig).Action)
}

func TestDecideImplicitMode(t *testing.T) {
	sig := Signal{
		Field:          "complexity",
		Value:          "simple",
		BaseConfidence: 0.85,
		Source:         SourceImplicit,
		Role:           RoleLearnable,
		Frequency:      1,
	}
	dec := Decide(sig)
	assert.Equal(t, ActionProvisionalCommit, dec.Action)
	assert.Equal(t, TargetRuntime, dec.Target)

	sig.Frequency = 3
	dec = Decide(sig)
	assert.Equal(t, ActionCommit, dec.Action)
	assert.Equal(t, TargetPersona, dec.Target)
}

func TestDecideHybridMode(t *testing.T) {
	sig := Signal{
		Field:          "voice",
		Value:          "first_person",
		BaseConfidence: 0.85,
		Source:         SourceImplicit,
		Role:           RoleLearnable,
		Frequency:      1,
	}
	assert.Equal(t, ActionProvisionalCommit, Decide(sig).Action)

	sig.Source = SourceExplicit
	assert.Equal(t, ActionCommit, Decide(sig).Action)

	sig.Source = SourceImplicit
	sig.Frequency = 2
	assert.Equal(t, ActionCommit, Decide(sig).Action)
}

func TestDecideExplicitOrNMode(t *testing.T) {
	sig := Signal{
		Field:          "tone",
		Value:          "playful",
		BaseConfidence: 0.9,
		Source:         SourceDerived,
		Role:           RoleLearnable,
		Frequency:      1,
	}
	dec := Decide(sig)
	assert.Equal(t, ActionProvisionalCommit, dec.Action)
	assert.Equal(t, TargetRuntime, dec.Target)

	sig.Frequency = 2
	assert.Equal(t, ActionCommit, Decide(sig).Action)
}

func TestDecidePartialCommitForRecurrentLists(t *testing.T) {
	dec := Decide(Signal{
		Field:          "content_types",
		Value:          []string{"newsletter"},
		BaseConfidence: 0.9,
		Source:         SourceImplicit,
		Role:           RoleLearnable,
		Frequency:      2,
	})

	assert.Equal(t, ActionPartialCommit, dec.Action)
	assert.Equal(t, TargetPersona, dec.Target)
}

func TestDecideOneDecisionPerSignal(t *testing.T) {
	signals := []Signal{
		{Field: "tone", Value: "casual", BaseConfidence: 0.9, Source: SourceExplicit, Role: RoleLearnable},
		{Field: "mystery", Value: 1, BaseConfidence: 0.9, Source: SourceExplicit, Role: RoleLearnable},
		{Field: "role", Value: "CTO", BaseConfidence: 0.2, Source: SourceExplicit, Role: RolePersona},
	}
	engine := NewEngine(nil, nil)
	decisions := engine.Run(context.Background(), "u1", signals)
	require.Len(t, decisions, len(signals))
}

type fakePatternLog struct {
	counts   map[string]int
	recorded []Signal
}

func (f *fakePatternLog) Record(_ context.Context, _ string, sig Signal, _ Decision) error {
	f.recorded = append(f.recorded, sig)
	return nil
}

func (f *fakePatternLog) CountOccurrences(_ context.Context, _ string, _, field string, _ any) (int, error) {
	return f.counts[field], nil
}

func TestRunEnrichesFrequencyFromPatternLog(t *testing.T) {
	log := &fakePatternLog{counts: map[string]int{"complexity": 2}}
	engine := NewEngine(log, nil)

	decisions := engine.Run(context.Background(), "u1", []Signal{{
		Field:          "complexity",
		Value:          "simple",
		BaseConfidence: 0.85,
		Source:         SourceImplicit,
		Role:           RoleLearnable,
		Frequency:      1,
	}})

	// two prior observations + this one meets the threshold of 3
	require.Len(t, decisions, 1)
	assert.Equal(t, ActionCommit, decisions[0].Action)
	assert.Len(t, log.recorded, 1)
}

func TestRunNeverLogsPersonaSignals(t *testing.T) {
	log := &fakePatternLog{counts: map[string]int{}}
	engine := NewEngine(log, nil)

	engine.Run(context.Background(), "u1", []Signal{{
		Field:          "role",
		Value:          "CTO",
		BaseConfidence: 0.9,
		Source:         SourceExplicit,
		Role:           RolePersona,
	}})

	assert.Empty(t, log.recorded)
}
