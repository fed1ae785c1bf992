package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/logging"
)

// Artifact is the metadata row for one produced document. The body lives in
// the object store at ContentRef.
type Artifact struct {
	ID         string
	UserID     string
	Type       string
	Title      string
	Summary    string
	ContentRef string
	Metadata   map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrNotFound marks a missing artifact row.
var ErrNotFound = errors.New("artifact not found")

// Repository is the artifacts table access layer.
type Repository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewRepository(pool *pgxpool.Pool, logger logging.Logger) *Repository {
	return &Repository{pool: pool, logger: logging.OrNop(logger)}
}

// EnsureSchema creates the artifacts table.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agentic_memory_schema.artifacts (
			id          UUID PRIMARY KEY,
			user_id     TEXT NOT NULL,
			type        TEXT NOT NULL DEFAULT 'email',
			title       TEXT,
			summary     TEXT,
			content_ref TEXT NOT NULL,
			metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create artifacts: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_artifacts_user
		ON agentic_memory_schema.artifacts (user_id, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("index artifacts: %w", err)
	}
	return nil
}

// Create inserts a metadata row.
func (r *Repository) Create(ctx context.Context, a *Artifact) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("marshal artifact metadata: %w", err)
	}
	if a.Metadata == nil {
		metadata = []byte("{}")
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO agentic_memory_schema.artifacts
			(id, user_id, type, title, summary, content_ref, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.Type, a.Title, a.Summary, a.ContentRef, metadata).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// Get loads one artifact by id.
func (r *Repository) Get(ctx context.Context, id string) (*Artifact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, type, COALESCE(title, ''), COALESCE(summary, ''),
		       content_ref, metadata, created_at, updated_at
		FROM agentic_memory_schema.artifacts
		WHERE id = $1`,
		id)
	a, err := scanArtifact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", id, err)
	}
	return a, nil
}

// ListByUser returns a user's artifacts, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Artifact, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, COALESCE(title, ''), COALESCE(summary, ''),
		       content_ref, metadata, created_at, updated_at
		FROM agentic_memory_schema.artifacts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateSummary replaces an artifact's summary.
func (r *Repository) UpdateSummary(ctx context.Context, id, summary string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE agentic_memory_schema.artifacts
		SET summary = $2, updated_at = now()
		WHERE id = $1`,
		id, summary)
	if err != nil {
		return fmt.Errorf("update artifact summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*Artifact, error) {
	var a Artifact
	var metadata []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Summary,
		&a.ContentRef, &metadata, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("decode artifact metadata: %w", err)
		}
	}
	return &a, nil
}
