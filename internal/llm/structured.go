package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNothingExtracted marks a null or schema-mismatched structured output.
// Callers treat it as "nothing extracted" and continue.
var ErrNothingExtracted = errors.New("nothing extracted")

// Validator is implemented by extraction records that enforce their own
// enum and range invariants at the schema boundary.
type Validator interface {
	Validate() error
}

// CompleteStructured runs a completion and decodes the model output into out.
// Model output is forgiving territory: code fences are stripped and mildly
// broken JSON is repaired before decoding. A response that still cannot be
// decoded, or that fails validation, yields ErrNothingExtracted.
func CompleteStructured(ctx context.Context, client Client, systemPrompt, userPrompt string, out any) error {
	raw, err := client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return DecodeStructured(raw, out)
}

// DecodeStructured decodes raw LLM output into out.
func DecodeStructured(raw string, out any) error {
	payload := stripCodeFence(raw)
	if strings.TrimSpace(payload) == "" || strings.TrimSpace(payload) == "null" {
		return ErrNothingExtracted
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return fmt.Errorf("%w: %v", ErrNothingExtracted, err)
		}
		if err := json.Unmarshal([]byte(repaired), out); err != nil {
			return fmt.Errorf("%w: %v", ErrNothingExtracted, err)
		}
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrNothingExtracted, err)
		}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
