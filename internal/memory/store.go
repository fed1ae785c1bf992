package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/embedding"
	"mnemo/internal/logging"
)

// Store is the Postgres long-term memory store. Embeddings live in a
// pgvector column; nearest-neighbor queries use cosine distance.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewStore(pool *pgxpool.Pool, logger logging.Logger) *Store {
	return &Store{pool: pool, logger: logging.OrNop(logger)}
}

// EnsureSchema creates the memory schema, tables, and indices. Safe to run
// repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS agentic_memory_schema`,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS agentic_memory_schema.memories (
			id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id           TEXT NOT NULL,
			kind              TEXT NOT NULL,
			category          TEXT NOT NULL,
			topic             TEXT NOT NULL,
			fact              TEXT NOT NULL,
			importance        DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			confidence        DOUBLE PRECISION NOT NULL,
			confidence_source TEXT NOT NULL DEFAULT 'implicit',
			frequency         INTEGER NOT NULL DEFAULT 1,
			status            TEXT NOT NULL DEFAULT 'active',
			embedding         vector(%d),
			metadata          JSONB NOT NULL DEFAULT '{}'::jsonb,
			expires_at        TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_updated      TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT memories_confidence_range CHECK (confidence >= 0 AND confidence <= 1),
			CONSTRAINT memories_importance_range CHECK (importance >= 0 AND importance <= 10)
		)`, embedding.Dimensions),
		`CREATE TABLE IF NOT EXISTS agentic_memory_schema.memory_events (
			id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			memory_id       UUID NOT NULL REFERENCES agentic_memory_schema.memories(id) ON DELETE CASCADE,
			event_type      TEXT NOT NULL,
			source          TEXT,
			signal_strength DOUBLE PRECISION,
			raw_context     TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_user_status
			ON agentic_memory_schema.memories (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_active_factual
			ON agentic_memory_schema.memories (user_id, category, topic)
			WHERE status = 'active' AND kind = 'factual'`,
		`CREATE INDEX IF NOT EXISTS idx_memories_episodic_expiry
			ON agentic_memory_schema.memories (expires_at)
			WHERE kind = 'episodic'`,
		`CREATE INDEX IF NOT EXISTS idx_memories_embedding
			ON agentic_memory_schema.memories
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS idx_memory_events_memory
			ON agentic_memory_schema.memory_events (memory_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("memory schema bootstrap: %w", err)
		}
	}
	return nil
}

// Insert stores a new memory row and returns its id.
func (s *Store) Insert(ctx context.Context, m *Memory) (string, error) {
	metadata, err := json.Marshal(orEmpty(m.Metadata))
	if err != nil {
		return "", fmt.Errorf("marshal memory metadata: %w", err)
	}

	var embLiteral any
	if len(m.Embedding) > 0 {
		embLiteral = embedding.VectorLiteral(m.Embedding)
	}

	var id string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO agentic_memory_schema.memories
			(user_id, kind, category, topic, fact, importance, confidence,
			 confidence_source, frequency, status, embedding, metadata, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::vector, $12, $13)
		RETURNING id`,
		m.UserID, string(m.Kind), m.Category, m.Topic, m.Fact,
		m.Importance, m.Confidence, m.ConfidenceSource,
		m.Frequency, string(m.Status), embLiteral, metadata, m.ExpiresAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return id, nil
}

// NearestActiveFactual returns the closest active factual memory for the
// user by cosine distance, or nil when the user has none.
func (s *Store) NearestActiveFactual(ctx context.Context, userID string, emb []float32) (*Memory, float64, error) {
	if err := embedding.CheckDimensions(emb, embedding.Dimensions); err != nil {
		return nil, 0, err
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, kind, category, topic, fact, importance, confidence,
		       confidence_source, frequency, status, metadata, expires_at,
		       created_at, last_updated,
		       embedding <=> $2::vector AS distance
		FROM agentic_memory_schema.memories
		WHERE user_id = $1 AND kind = 'factual' AND status = 'active'
			AND embedding IS NOT NULL
		ORDER BY embedding <=> $2::vector
		LIMIT 1`,
		userID, embedding.VectorLiteral(emb))

	m, distance, err := scanScored(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("nearest factual lookup: %w", err)
	}
	return m, distance, nil
}

// Reinforce strengthens an existing memory in place and appends a
// reinforced event. Frequency and importance only ever go up; importance
// saturates at 10.
func (s *Store) Reinforce(ctx context.Context, id string, signalStrength float64, rawContext string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reinforce: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE agentic_memory_schema.memories
		SET frequency = frequency + 1,
		    importance = LEAST(importance + 0.5, 10),
		    last_updated = now()
		WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("reinforce memory %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reinforce memory %s: not found", id)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO agentic_memory_schema.memory_events
			(memory_id, event_type, source, signal_strength, raw_context)
		VALUES ($1, $2, $3, $4, $5)`,
		id, EventReinforced, "ltm_writer", signalStrength, truncate(rawContext, 500))
	if err != nil {
		return fmt.Errorf("append reinforced event: %w", err)
	}

	return tx.Commit(ctx)
}

// AppendEvent records one event for a memory.
func (s *Store) AppendEvent(ctx context.Context, ev Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO agentic_memory_schema.memory_events
			(memory_id, event_type, source, signal_strength, raw_context)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.MemoryID, ev.EventType, ev.Source, ev.SignalStrength, truncate(ev.RawContext, 500))
	if err != nil {
		return fmt.Errorf("append %s event: %w", ev.EventType, err)
	}
	return nil
}

// ActiveEpisodic loads all active, unexpired episodic rows for the user,
// newest first.
func (s *Store) ActiveEpisodic(ctx context.Context, userID string) ([]Memory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, kind, category, topic, fact, importance, confidence,
		       confidence_source, frequency, status, metadata, expires_at,
		       created_at, last_updated
		FROM agentic_memory_schema.memories
		WHERE user_id = $1 AND kind = 'episodic' AND status = 'active'
			AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("load episodic memories: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// SearchFactual runs an approximate nearest-neighbor query for one chunk
// embedding over active factual rows at or above minConfidence.
func (s *Store) SearchFactual(ctx context.Context, userID string, emb []float32, minConfidence float64, includeSupporting bool, limit int) ([]ScoredMemory, error) {
	if err := embedding.CheckDimensions(emb, embedding.Dimensions); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	statuses := []string{string(StatusActive)}
	if includeSupporting {
		statuses = append(statuses, string(StatusSupporting))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, kind, category, topic, fact, importance, confidence,
		       confidence_source, frequency, status, metadata, expires_at,
		       created_at, last_updated,
		       embedding <=> $2::vector AS distance
		FROM agentic_memory_schema.memories
		WHERE user_id = $1 AND kind = 'factual' AND status = ANY($3)
			AND confidence >= $4 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2::vector
		LIMIT $5`,
		userID, embedding.VectorLiteral(emb), statuses, minConfidence, limit)
	if err != nil {
		return nil, fmt.Errorf("factual search: %w", err)
	}
	defer rows.Close()

	var out []ScoredMemory
	for rows.Next() {
		m, distance, err := scanScored(rows)
		if err != nil {
			return nil, fmt.Errorf("factual search scan: %w", err)
		}
		out = append(out, ScoredMemory{Memory: *m, Distance: distance})
	}
	return out, rows.Err()
}

// ActiveByUser loads active memories for consolidation, strongest first,
// embeddings included.
func (s *Store) ActiveByUser(ctx context.Context, userID string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, kind, category, topic, fact, importance, confidence,
		       confidence_source, frequency, status, metadata, expires_at,
		       created_at, last_updated, embedding::text
		FROM agentic_memory_schema.memories
		WHERE user_id = $1 AND status = 'active'
		ORDER BY confidence DESC, frequency DESC, last_updated DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load active memories: %w", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		m, err := scanWithEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("active memory scan: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SetStatus moves a set of memories to a new lifecycle status.
func (s *Store) SetStatus(ctx context.Context, ids []string, status Status) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE agentic_memory_schema.memories
		SET status = $2, last_updated = now()
		WHERE id = ANY($1)`,
		ids, string(status))
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

// UserIDs lists the distinct owners of active memories, for background
// sweeps.
func (s *Store) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT user_id FROM agentic_memory_schema.memories
		WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("list memory owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBase(r rowScanner, extra ...any) (*Memory, error) {
	var (
		m        Memory
		kind     string
		status   string
		metadata []byte
	)
	dest := []any{
		&m.ID, &m.UserID, &kind, &m.Category, &m.Topic, &m.Fact,
		&m.Importance, &m.Confidence, &m.ConfidenceSource, &m.Frequency,
		&status, &metadata, &m.ExpiresAt, &m.CreatedAt, &m.LastUpdated,
	}
	dest = append(dest, extra...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	m.Kind = Kind(kind)
	m.Status = Status(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode memory metadata: %w", err)
		}
	}
	return &m, nil
}

func scanScored(r rowScanner) (*Memory, float64, error) {
	var distance float64
	m, err := scanBase(r, &distance)
	return m, distance, err
}

func scanWithEmbedding(r rowScanner) (*Memory, error) {
	var literal *string
	m, err := scanBase(r, &literal)
	if err != nil {
		return nil, err
	}
	if literal != nil {
		emb, err := embedding.ParseVectorLiteral(*literal)
		if err != nil {
			return nil, err
		}
		m.Embedding = emb
	}
	return m, nil
}

func collect(rows pgx.Rows) ([]Memory, error) {
	var out []Memory
	for rows.Next() {
		m, err := scanBase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
