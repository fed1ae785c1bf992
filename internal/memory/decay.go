package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/logging"
)

// Decay removes expired episodic memories. The sweep is idempotent and safe
// to run alongside extraction; live rows are untouched.
type Decay struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

func NewDecay(pool *pgxpool.Pool, logger logging.Logger) *Decay {
	return &Decay{pool: pool, logger: logging.OrNop(logger)}
}

// Run deletes episodic rows past their expiry and returns how many went.
func (d *Decay) Run(ctx context.Context) (int64, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM agentic_memory_schema.memories
		WHERE kind = 'episodic' AND expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("episodic decay: %w", err)
	}
	deleted := tag.RowsAffected()
	if deleted > 0 {
		d.logger.Info("episodic decay removed %d expired rows", deleted)
	}
	return deleted, nil
}
