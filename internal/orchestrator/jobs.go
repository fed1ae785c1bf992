package orchestrator

import (
	"context"
	"strings"

	"mnemo/internal/async"
	"mnemo/internal/epistemic"
	"mnemo/internal/memory"
	"mnemo/internal/metrics"
	"mnemo/internal/persona"
)

// enqueueBackgroundJobs hands the post-turn work to the single queue
// consumer. The three jobs for one turn run FIFO, so persona learning for a
// user never races its own memory extraction.
func (o *Orchestrator) enqueueBackgroundJobs(userID, sessionID, route, userMessage, response string) {
	conversation := "user: " + userMessage + "\nassistant: " + response

	o.queue.Enqueue(async.Task{
		Name: "persona_learn:" + userID,
		Run: func(ctx context.Context) error {
			return o.learnPersona(ctx, userID, conversation)
		},
	})
	o.queue.Enqueue(async.Task{
		Name: "ltm_extract:" + userID,
		Run: func(ctx context.Context) error {
			return o.extractMemories(ctx, userID, conversation)
		},
	})
	if o.artifacts.ShouldMaterialize(route, response) {
		o.queue.Enqueue(async.Task{
			Name: "artifact_write:" + userID,
			Run: func(ctx context.Context) error {
				return o.materializeArtifact(ctx, userID, sessionID, userMessage, response)
			},
		})
	}
}

// learnPersona runs extraction, cognition, projection, and the gated merge.
func (o *Orchestrator) learnPersona(ctx context.Context, userID, conversation string) error {
	signals, err := o.extractor.PersonaSignals(ctx, conversation)
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues("persona").Inc()
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "error").Inc()
		return err
	}
	if len(signals) == 0 {
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "empty").Inc()
		return nil
	}

	decisions := o.cognition.Run(ctx, userID, signals)
	for _, dec := range decisions {
		metrics.CognitionDecisions.WithLabelValues(string(dec.Action)).Inc()
	}

	fragment := persona.Project(signals, decisions)
	if fragment == nil {
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "no_commit").Inc()
		return nil
	}

	current, err := o.personas.Get(ctx, userID)
	if err != nil {
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "error").Inc()
		return err
	}
	merged, changed := persona.Merge(current, fragment)
	if len(changed) == 0 {
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "unchanged").Inc()
		return nil
	}
	if err := o.personas.Put(ctx, userID, merged); err != nil {
		metrics.BackgroundJobs.WithLabelValues("persona_learn", "error").Inc()
		return err
	}

	o.logger.Info("persona updated for %s: %s", userID, strings.Join(changed, ", "))
	metrics.BackgroundJobs.WithLabelValues("persona_learn", "ok").Inc()
	return nil
}

// extractMemories runs fact extraction and the long-term memory writes.
// Facts failing a write invariant are skipped individually.
func (o *Orchestrator) extractMemories(ctx context.Context, userID, conversation string) error {
	extraction, err := o.extractor.MemoryFacts(ctx, conversation)
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues("memory").Inc()
		metrics.BackgroundJobs.WithLabelValues("ltm_extract", "error").Inc()
		return err
	}

	var facts []memory.Fact
	for _, fact := range extraction.Facts {
		err := o.rules.AssertAllowed(epistemic.ScopeMemoryWrite, epistemic.CheckContext{
			"user_id":    userID,
			"confidence": fact.Confidence,
			"fact":       fact.Statement,
		})
		if err != nil {
			o.logger.Warn("fact blocked for %s: %v", userID, err)
			metrics.MemoryWrites.WithLabelValues("blocked").Inc()
			continue
		}
		facts = append(facts, fact)
	}

	result := o.writer.WriteFacts(ctx, userID, facts)
	episodicResult := o.writer.WriteEpisodic(ctx, userID, extraction.Episodic)

	metrics.MemoryWrites.WithLabelValues("inserted").Add(float64(result.Inserted + episodicResult.Inserted))
	metrics.MemoryWrites.WithLabelValues("reinforced").Add(float64(result.Reinforced))
	metrics.MemoryWrites.WithLabelValues("failed").Add(float64(result.Failed + episodicResult.Failed))
	metrics.BackgroundJobs.WithLabelValues("ltm_extract", "ok").Inc()
	return nil
}

// materializeArtifact persists the response as a document and notes the
// event on the session.
func (o *Orchestrator) materializeArtifact(ctx context.Context, userID, sessionID, userMessage, response string) error {
	summary := userMessage
	if len(summary) > 200 {
		summary = summary[:200]
	}

	a, err := o.artifacts.Create(ctx, userID, "", "", response, summary, map[string]any{
		"session_id": sessionID,
	})
	if err != nil {
		metrics.BackgroundJobs.WithLabelValues("artifact_write", "error").Inc()
		return err
	}

	o.scratchpad.Get(sessionID).AppendEvent("artifact_created", map[string]any{
		"artifact_id": a.ID,
		"content_ref": a.ContentRef,
	})
	metrics.BackgroundJobs.WithLabelValues("artifact_write", "ok").Inc()
	return nil
}
