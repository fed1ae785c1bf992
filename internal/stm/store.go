package stm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/logging"
)

// DefaultFetchLimit is how many active entries a context snapshot carries.
const DefaultFetchLimit = 7

// Store persists short-term working state in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger

	// AutoSupersede lets a new entry deactivate prior active entries of
	// the same state type even without an explicit supersedes pointer.
	// Off by default: silently discarding working state is worse than
	// carrying a stale line.
	AutoSupersede bool
}

func NewStore(pool *pgxpool.Pool, logger logging.Logger) *Store {
	return &Store{pool: pool, logger: logging.OrNop(logger)}
}

// EnsureSchema creates the short-term memory table.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agentic_memory_schema.stm_entries (
			stm_id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id    TEXT NOT NULL,
			state_type TEXT NOT NULL,
			statement  TEXT NOT NULL,
			rationale  TEXT,
			applies_to TEXT,
			supersedes UUID,
			confidence DOUBLE PRECISION NOT NULL,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create stm_entries: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_stm_active
		ON agentic_memory_schema.stm_entries (user_id, created_at DESC)
		WHERE is_active`)
	if err != nil {
		return fmt.Errorf("index stm_entries: %w", err)
	}
	return nil
}

// Commit writes an accepted intent as a new active entry. If the intent
// names a superseded entry (or AutoSupersede is on), the deactivation and
// the insert land in the same transaction.
func (s *Store) Commit(ctx context.Context, userID string, intent Intent) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin stm commit: %w", err)
	}
	defer tx.Rollback(ctx)

	if intent.Supersedes != "" {
		_, err = tx.Exec(ctx, `
			UPDATE agentic_memory_schema.stm_entries
			SET is_active = FALSE
			WHERE stm_id = $1 AND user_id = $2`,
			intent.Supersedes, userID)
		if err != nil {
			return "", fmt.Errorf("deactivate superseded entry: %w", err)
		}
	} else if s.AutoSupersede {
		_, err = tx.Exec(ctx, `
			UPDATE agentic_memory_schema.stm_entries
			SET is_active = FALSE
			WHERE user_id = $1 AND state_type = $2 AND is_active`,
			userID, string(intent.StateType))
		if err != nil {
			return "", fmt.Errorf("auto-supersede prior entries: %w", err)
		}
	}

	var supersedes any
	if intent.Supersedes != "" {
		supersedes = intent.Supersedes
	}
	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO agentic_memory_schema.stm_entries
			(user_id, state_type, statement, rationale, applies_to, supersedes, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING stm_id`,
		userID, string(intent.StateType), intent.Statement,
		nullable(intent.Rationale), nullable(intent.AppliesTo), supersedes,
		intent.Confidence).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert stm entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit stm entry: %w", err)
	}
	s.logger.Debug("stm commit %s type=%s for %s", id, intent.StateType, userID)
	return id, nil
}

// FetchActive returns the newest active entries for a user.
func (s *Store) FetchActive(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT stm_id, user_id, state_type, statement,
		       COALESCE(rationale, ''), COALESCE(applies_to, ''),
		       COALESCE(supersedes::text, ''), confidence, is_active, created_at
		FROM agentic_memory_schema.stm_entries
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch active stm entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var stateType string
		if err := rows.Scan(&e.ID, &e.UserID, &stateType, &e.Statement,
			&e.Rationale, &e.AppliesTo, &e.Supersedes,
			&e.Confidence, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stm entry: %w", err)
		}
		e.StateType = StateType(stateType)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
