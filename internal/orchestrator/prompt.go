package orchestrator

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"mnemo/internal/logging"
	"mnemo/internal/retrieval"
	"mnemo/internal/stm"
)

// contextTokenBudget caps the retrieved-context block of the user prompt.
// The query itself is never truncated.
const contextTokenBudget = 6000

// Budgeter counts and truncates prompt text by tokens. When the tokenizer
// cannot be constructed it degrades to a bytes/4 estimate.
type Budgeter struct {
	enc    *tiktoken.Tiktoken
	logger logging.Logger
}

func NewBudgeter(logger logging.Logger) *Budgeter {
	logger = logging.OrNop(logger)
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tokenizer unavailable, using byte estimate: %v", err)
		enc = nil
	}
	return &Budgeter{enc: enc, logger: logger}
}

// Count returns the token count of text.
func (b *Budgeter) Count(text string) int {
	if b.enc == nil {
		return len(text) / 4
	}
	return len(b.enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens.
func (b *Budgeter) Truncate(text string, maxTokens int) string {
	if b.enc == nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}
	tokens := b.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return b.enc.Decode(tokens[:maxTokens])
}

// renderContext assembles the retrieved-context block: working state first,
// episodic priming next, grounding facts last.
func renderContext(entries []stm.Entry, result retrieval.Result) string {
	var b strings.Builder

	if len(entries) > 0 {
		b.WriteString("## Working State\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- [%s] %s\n", e.StateType, e.Statement)
		}
		b.WriteString("\n")
	}

	if len(result.Episodic) > 0 {
		b.WriteString("## Current Situation\n")
		for _, m := range result.Episodic {
			b.WriteString("- " + m.Fact + "\n")
		}
		b.WriteString("\n")
	}

	if len(result.Factual) > 0 {
		b.WriteString("## Known Context\n")
		for _, m := range result.Factual {
			fmt.Fprintf(&b, "- (%s) %s\n", m.Category, m.Fact)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderArtifactBody frames a prior document for the edit route.
func renderArtifactBody(title, body string) string {
	var b strings.Builder
	b.WriteString("## Document To Edit\n")
	if title != "" {
		b.WriteString("Title: " + title + "\n")
	}
	b.WriteString("\n" + body)
	return b.String()
}

// renderArtifactList frames prior document summaries for the reference and
// semantic_lookup routes.
func renderArtifactList(items []artifactSummary) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Prior Documents\n")
	for _, item := range items {
		line := "- " + item.ID
		if item.Title != "" {
			line += " " + item.Title
		}
		if item.Summary != "" {
			line += ": " + item.Summary
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type artifactSummary struct {
	ID      string
	Title   string
	Summary string
}
