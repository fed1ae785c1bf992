package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mnemo/internal/artifact"
	"mnemo/internal/async"
	"mnemo/internal/cognition"
	"mnemo/internal/epistemic"
	"mnemo/internal/extract"
	"mnemo/internal/llm"
	"mnemo/internal/logging"
	"mnemo/internal/memory"
	"mnemo/internal/metrics"
	"mnemo/internal/persona"
	"mnemo/internal/retrieval"
	"mnemo/internal/stm"
)

// Orchestrator runs the per-turn pipeline: intent extraction, routing,
// gated STM commit, route-specific retrieval, prompt assembly, the chat
// call, and background learning jobs. The response path only ever waits on
// extraction, retrieval, and the chat LLM; everything else is queued.
type Orchestrator struct {
	extractor  *extract.Extractor
	stmStore   *stm.Store
	scratchpad *stm.Scratchpad
	retriever  *retrieval.Retriever
	personas   *persona.Store
	cognition  *cognition.Engine
	writer     *memory.Writer
	artifacts  *artifact.Service
	artifactDB *artifact.Repository
	rules      *epistemic.Engine
	chat       llm.Client
	queue      *async.Queue
	budgeter   *Budgeter
	logger     logging.Logger
}

// Deps wires the orchestrator.
type Deps struct {
	Extractor  *extract.Extractor
	STMStore   *stm.Store
	Scratchpad *stm.Scratchpad
	Retriever  *retrieval.Retriever
	Personas   *persona.Store
	Cognition  *cognition.Engine
	Writer     *memory.Writer
	Artifacts  *artifact.Service
	ArtifactDB *artifact.Repository
	Rules      *epistemic.Engine
	Chat       llm.Client
	Queue      *async.Queue
	Logger     logging.Logger
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		extractor:  deps.Extractor,
		stmStore:   deps.STMStore,
		scratchpad: deps.Scratchpad,
		retriever:  deps.Retriever,
		personas:   deps.Personas,
		cognition:  deps.Cognition,
		writer:     deps.Writer,
		artifacts:  deps.Artifacts,
		artifactDB: deps.ArtifactDB,
		rules:      deps.Rules,
		chat:       deps.Chat,
		queue:      deps.Queue,
		budgeter:   NewBudgeter(deps.Logger),
		logger:     logging.OrNop(deps.Logger),
	}
}

// HandleTurn serves one user message and returns the assistant response.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, sessionID, baseSystemPrompt, userMessage string) (string, error) {
	start := time.Now()
	session := o.scratchpad.Get(sessionID)

	// 1-2. Combined extraction; the route is always applied.
	intent := o.extractor.TurnIntent(ctx, userMessage, recentMessages(session))
	route := intent.Route.Route
	session.SetRoute(route, intent.Route.Confidence)

	// 3-4. Gated STM commit.
	if stm.Accept(intent.STM) {
		if _, err := o.stmStore.Commit(ctx, userID, intent.STM); err != nil {
			o.logger.Warn("stm commit failed for %s: %v", userID, err)
		}
	}

	// 5. Route-specific retrieval.
	contextBlock, err := o.buildContext(ctx, userID, route, userMessage)
	if err != nil {
		return "", err
	}

	// 6. Prompt assembly.
	systemPrompt, err := o.buildSystemPrompt(ctx, userID, baseSystemPrompt)
	if err != nil {
		return "", err
	}
	userPrompt := userMessage
	if contextBlock != "" {
		contextBlock = o.budgeter.Truncate(contextBlock, contextTokenBudget)
		userPrompt = contextBlock + "\n\n## Request\n" + userMessage
	}

	// 7. Chat call.
	response, err := o.chat.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	session.AppendMessage("user", userMessage)
	session.AppendMessage("assistant", response)

	// 8. Background jobs; never on the response path.
	o.enqueueBackgroundJobs(userID, sessionID, route, userMessage, response)

	metrics.TurnsTotal.WithLabelValues(route).Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	return response, nil
}

// buildContext assembles the retrieved-context block for the route.
func (o *Orchestrator) buildContext(ctx context.Context, userID, route, userMessage string) (string, error) {
	switch route {
	case extract.RouteCurrentContext:
		entries, err := o.stmStore.FetchActive(ctx, userID, stm.DefaultFetchLimit)
		if err != nil {
			return "", err
		}
		result, err := o.retriever.Retrieve(ctx, userID, userMessage)
		if err != nil {
			return "", err
		}
		return renderContext(entries, result), nil

	case extract.RouteEdit:
		items, err := o.artifactDB.ListByUser(ctx, userID, 1)
		if err != nil {
			return "", err
		}
		if len(items) == 0 {
			return "", fmt.Errorf("edit requested but no artifact exists for user")
		}
		body, err := o.artifacts.Body(ctx, &items[0])
		if err != nil {
			return "", err
		}
		return renderArtifactBody(items[0].Title, body), nil

	case extract.RouteReference, extract.RouteSemanticLookup:
		items, err := o.artifactDB.ListByUser(ctx, userID, 20)
		if err != nil {
			return "", err
		}
		summaries := make([]artifactSummary, 0, len(items))
		for _, item := range items {
			summaries = append(summaries, artifactSummary{
				ID:      item.ID,
				Title:   item.Title,
				Summary: item.Summary,
			})
		}
		return renderArtifactList(summaries), nil

	default:
		return "", nil
	}
}

// buildSystemPrompt layers persona context and reasoning rules onto the
// caller's base prompt.
func (o *Orchestrator) buildSystemPrompt(ctx context.Context, userID, base string) (string, error) {
	parts := []string{strings.TrimSpace(base)}

	p, err := o.personas.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if rendered := persona.RenderContext(p); rendered != "" {
		parts = append(parts, rendered)
	}
	if rules := o.rules.PromptSection(epistemic.ScopeReasoning); rules != "" {
		parts = append(parts, rules)
	}

	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), nil
}

func recentMessages(session *stm.Session) string {
	const recentTurns = 6
	var b strings.Builder
	for _, m := range session.RecentMessages(recentTurns) {
		b.WriteString(m.Role + ": " + m.Content + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
