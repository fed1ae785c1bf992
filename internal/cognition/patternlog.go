package cognition

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/logging"
)

// PatternLog persists learnable signal observations so recurrence can be
// counted across turns and sessions.
type PatternLog struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewPatternLog(pool *pgxpool.Pool, logger logging.Logger) *PatternLog {
	return &PatternLog{pool: pool, logger: logging.OrNop(logger)}
}

// EnsureSchema creates the pattern log table.
func (p *PatternLog) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agentic_memory_schema.cognition_pattern_log (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id      TEXT NOT NULL,
			category     TEXT NOT NULL,
			field        TEXT NOT NULL,
			signal_value JSONB,
			source       TEXT NOT NULL,
			confidence   DOUBLE PRECISION NOT NULL,
			action       TEXT NOT NULL,
			target       TEXT,
			reason       TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create cognition_pattern_log: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_pattern_log_user_field
		ON agentic_memory_schema.cognition_pattern_log (user_id, field)`)
	if err != nil {
		return fmt.Errorf("index cognition_pattern_log: %w", err)
	}
	return nil
}

// Record appends one decided observation.
func (p *PatternLog) Record(ctx context.Context, userID string, sig Signal, dec Decision) error {
	value, err := json.Marshal(sig.Value)
	if err != nil {
		return fmt.Errorf("marshal signal value: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO agentic_memory_schema.cognition_pattern_log
			(user_id, category, field, signal_value, source, confidence, action, target, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, sig.Category, sig.Field, value, string(sig.Source),
		sig.BaseConfidence, string(dec.Action), string(dec.Target), dec.Reason)
	if err != nil {
		return fmt.Errorf("insert pattern log entry: %w", err)
	}
	return nil
}

// CountOccurrences counts prior observations of the same field/value pair.
func (p *PatternLog) CountOccurrences(ctx context.Context, userID, category, field string, value any) (int, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("marshal signal value: %w", err)
	}

	var count int
	err = p.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM agentic_memory_schema.cognition_pattern_log
		WHERE user_id = $1 AND category = $2 AND field = $3 AND signal_value = $4::jsonb`,
		userID, category, field, encoded).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pattern log entries: %w", err)
	}
	return count, nil
}
