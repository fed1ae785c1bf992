package orchestrator

import (
	"context"
	"time"

	"mnemo/internal/async"
	"mnemo/internal/logging"
	"mnemo/internal/memory"
	"mnemo/internal/metrics"
)

const (
	decayInterval         = 10 * time.Minute
	consolidationInterval = 6 * time.Hour
)

// Background runs the periodic maintenance sweeps: episodic decay and
// memory consolidation. Each sweep is independent; a failed run waits for
// the next tick.
type Background struct {
	decay        *memory.Decay
	consolidator *memory.Consolidator
	logger       logging.Logger
}

func NewBackground(decay *memory.Decay, consolidator *memory.Consolidator, logger logging.Logger) *Background {
	return &Background{
		decay:        decay,
		consolidator: consolidator,
		logger:       logging.OrNop(logger),
	}
}

// Start launches the sweep loops. They stop when ctx is cancelled.
func (b *Background) Start(ctx context.Context) {
	async.Go(b.logger, "episodic-decay-loop", func() {
		ticker := time.NewTicker(decayInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := b.decay.Run(ctx); err != nil {
					b.logger.Error("episodic decay sweep failed: %v", err)
					metrics.BackgroundJobs.WithLabelValues("decay", "error").Inc()
				} else {
					metrics.BackgroundJobs.WithLabelValues("decay", "ok").Inc()
				}
			}
		}
	})

	async.Go(b.logger, "consolidation-loop", func() {
		ticker := time.NewTicker(consolidationInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := b.consolidator.ConsolidateAll(ctx); err != nil {
					b.logger.Error("consolidation sweep failed: %v", err)
					metrics.BackgroundJobs.WithLabelValues("consolidate", "error").Inc()
				} else {
					metrics.BackgroundJobs.WithLabelValues("consolidate", "ok").Inc()
				}
			}
		}
	})
}
