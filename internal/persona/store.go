package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/logging"
)

// Store persists one persona row per user, each block as its own JSONB
// column so partial reads and schema evolution stay cheap.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewStore(pool *pgxpool.Pool, logger logging.Logger) *Store {
	return &Store{pool: pool, logger: logging.OrNop(logger)}
}

// EnsureSchema creates the persona table.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agentic_memory_schema.user_persona (
			user_id          TEXT PRIMARY KEY,
			user_identity    JSONB,
			company_profile  JSONB,
			company_business JSONB,
			company_products JSONB,
			company_brand    JSONB,
			objective        JSONB,
			content_format   JSONB,
			audience         JSONB,
			tone             JSONB,
			writing_style    JSONB,
			language         JSONB,
			constraints      JSONB,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create user_persona: %w", err)
	}
	return nil
}

// Get loads a user's persona. A missing row is an empty persona, not an
// error.
func (s *Store) Get(ctx context.Context, userID string) (*Persona, error) {
	var raw [12][]byte
	err := s.pool.QueryRow(ctx, `
		SELECT user_identity, company_profile, company_business, company_products,
		       company_brand, objective, content_format, audience,
		       tone, writing_style, language, constraints
		FROM agentic_memory_schema.user_persona
		WHERE user_id = $1`,
		userID).Scan(&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5],
		&raw[6], &raw[7], &raw[8], &raw[9], &raw[10], &raw[11])
	if errors.Is(err, pgx.ErrNoRows) {
		return &Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load persona for %s: %w", userID, err)
	}

	p := &Persona{}
	decode := func(data []byte, out any) error {
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, out)
	}
	targets := []any{
		&p.UserIdentity, &p.CompanyProfile, &p.CompanyBusiness, &p.CompanyProducts,
		&p.CompanyBrand, &p.Objective, &p.ContentFormat, &p.Audience,
		&p.Tone, &p.WritingStyle, &p.Language, &p.Constraints,
	}
	for i, target := range targets {
		if err := decode(raw[i], target); err != nil {
			return nil, fmt.Errorf("decode persona block %s for %s: %w", BlockNames[i], userID, err)
		}
	}
	return p, nil
}

// Put upserts the full persona row. Nil blocks are written as SQL NULL so a
// block deliberately cleared upstream stays cleared.
func (s *Store) Put(ctx context.Context, userID string, p *Persona) error {
	if p == nil {
		p = &Persona{}
	}

	blocks := []any{
		p.UserIdentity, p.CompanyProfile, p.CompanyBusiness, p.CompanyProducts,
		p.CompanyBrand, p.Objective, p.ContentFormat, p.Audience,
		p.Tone, p.WritingStyle, p.Language, p.Constraints,
	}
	args := make([]any, 0, len(blocks)+1)
	args = append(args, userID)
	for i, blk := range blocks {
		encoded, err := encodeBlock(blk)
		if err != nil {
			return fmt.Errorf("encode persona block %s for %s: %w", BlockNames[i], userID, err)
		}
		args = append(args, encoded)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO agentic_memory_schema.user_persona
			(user_id, user_identity, company_profile, company_business, company_products,
			 company_brand, objective, content_format, audience,
			 tone, writing_style, language, constraints, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (user_id) DO UPDATE SET
			user_identity    = EXCLUDED.user_identity,
			company_profile  = EXCLUDED.company_profile,
			company_business = EXCLUDED.company_business,
			company_products = EXCLUDED.company_products,
			company_brand    = EXCLUDED.company_brand,
			objective        = EXCLUDED.objective,
			content_format   = EXCLUDED.content_format,
			audience         = EXCLUDED.audience,
			tone             = EXCLUDED.tone,
			writing_style    = EXCLUDED.writing_style,
			language         = EXCLUDED.language,
			constraints      = EXCLUDED.constraints,
			updated_at       = now()`,
		args...)
	if err != nil {
		return fmt.Errorf("upsert persona for %s: %w", userID, err)
	}
	return nil
}

// encodeBlock marshals a block pointer, mapping nil (typed or untyped) to
// SQL NULL.
func encodeBlock(blk any) (any, error) {
	switch b := blk.(type) {
	case *IdentityBlock:
		if b == nil {
			return nil, nil
		}
	case *CompanyProfileBlock:
		if b == nil {
			return nil, nil
		}
	case *CompanyBusinessBlock:
		if b == nil {
			return nil, nil
		}
	case *CompanyProductsBlock:
		if b == nil {
			return nil, nil
		}
	case *CompanyBrandBlock:
		if b == nil {
			return nil, nil
		}
	case *ObjectiveBlock:
		if b == nil {
			return nil, nil
		}
	case *ContentFormatBlock:
		if b == nil {
			return nil, nil
		}
	case *AudienceBlock:
		if b == nil {
			return nil, nil
		}
	case *ToneBlock:
		if b == nil {
			return nil, nil
		}
	case *WritingStyleBlock:
		if b == nil {
			return nil, nil
		}
	case *LanguageBlock:
		if b == nil {
			return nil, nil
		}
	case *ConstraintsBlock:
		if b == nil {
			return nil, nil
		}
	case nil:
		return nil, nil
	}
	return json.Marshal(blk)
}
