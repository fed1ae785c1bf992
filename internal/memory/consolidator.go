package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/embedding"
	"mnemo/internal/logging"
)

// SimilarityThreshold is the minimum cosine similarity for two memories to
// be merged as duplicates.
const SimilarityThreshold = 0.85

// consolidationTopK caps how many active rows one pass considers per user.
const consolidationTopK = 200

// ConsolidationResult summarizes one consolidation pass for one user.
type ConsolidationResult struct {
	Scanned  int
	Clusters int
	Merged   int
	Demoted  int
}

// Consolidator compacts a user's active memories in two passes: duplicate
// merging by embedding similarity, then topic canonicalization. Strength
// ordering (confidence, then frequency, then recency) decides the canonical
// row in both passes.
type Consolidator struct {
	pool   *pgxpool.Pool
	store  *Store
	logger logging.Logger
}

func NewConsolidator(pool *pgxpool.Pool, store *Store, logger logging.Logger) *Consolidator {
	return &Consolidator{pool: pool, store: store, logger: logging.OrNop(logger)}
}

// ConsolidateUser runs both passes for one user. Each pass commits in its
// own transaction so a level-2 failure never unwinds level-1 merges.
func (c *Consolidator) ConsolidateUser(ctx context.Context, userID string) (ConsolidationResult, error) {
	var result ConsolidationResult

	memories, err := c.store.ActiveByUser(ctx, userID, consolidationTopK)
	if err != nil {
		return result, err
	}
	result.Scanned = len(memories)
	if len(memories) < 2 {
		return result, nil
	}

	survivors, err := c.mergeDuplicates(ctx, memories, &result)
	if err != nil {
		return result, fmt.Errorf("duplicate merge for %s: %w", userID, err)
	}

	if err := c.canonicalizeTopics(ctx, survivors, &result); err != nil {
		return result, fmt.Errorf("topic canonicalization for %s: %w", userID, err)
	}

	c.logger.Info("consolidated %s: scanned=%d clusters=%d merged=%d demoted=%d",
		userID, result.Scanned, result.Clusters, result.Merged, result.Demoted)
	return result, nil
}

// ConsolidateAll sweeps every user with active memories.
func (c *Consolidator) ConsolidateAll(ctx context.Context) (ConsolidationResult, error) {
	users, err := c.store.UserIDs(ctx)
	if err != nil {
		return ConsolidationResult{}, err
	}

	var total ConsolidationResult
	for _, userID := range users {
		result, err := c.ConsolidateUser(ctx, userID)
		if err != nil {
			return total, err
		}
		total.Scanned += result.Scanned
		total.Clusters += result.Clusters
		total.Merged += result.Merged
		total.Demoted += result.Demoted
	}
	return total, nil
}

// mergeDuplicates clusters same-category memories whose embeddings agree at
// SimilarityThreshold or above. The strongest row absorbs the rest: its
// frequency grows by the number of merged rows and the merged rows leave the
// active set for good. Returns the rows still active afterwards.
func (c *Consolidator) mergeDuplicates(ctx context.Context, memories []Memory, result *ConsolidationResult) ([]Memory, error) {
	visited := make(map[string]bool, len(memories))
	var survivors []Memory

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for i, base := range memories {
		if visited[base.ID] {
			continue
		}
		visited[base.ID] = true

		if len(base.Embedding) == 0 {
			survivors = append(survivors, base)
			continue
		}

		// memories arrive strongest-first, so the base of each cluster
		// is its canonical row.
		var mergedIDs []string
		for _, peer := range memories[i+1:] {
			if visited[peer.ID] || peer.Category != base.Category || len(peer.Embedding) == 0 {
				continue
			}
			if embedding.Cosine(base.Embedding, peer.Embedding) >= SimilarityThreshold {
				visited[peer.ID] = true
				mergedIDs = append(mergedIDs, peer.ID)
			}
		}

		survivors = append(survivors, base)
		if len(mergedIDs) == 0 {
			continue
		}
		result.Clusters++
		result.Merged += len(mergedIDs)

		_, err = tx.Exec(ctx, `
			UPDATE agentic_memory_schema.memories
			SET frequency = frequency + $2, last_updated = now()
			WHERE id = $1`,
			base.ID, len(mergedIDs))
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE agentic_memory_schema.memories
			SET status = 'merged', last_updated = now()
			WHERE id = ANY($1)`,
			mergedIDs)
		if err != nil {
			return nil, err
		}
		for _, mergedID := range mergedIDs {
			_, err = tx.Exec(ctx, `
				INSERT INTO agentic_memory_schema.memory_events
					(memory_id, event_type, source, raw_context)
				VALUES ($1, $2, $3, $4)`,
				mergedID, EventMerged, "consolidator", "merged into "+base.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	return survivors, tx.Commit(ctx)
}

// canonicalizeTopics demotes all but the strongest active row per
// (category, topic) to supporting. Demotion is reversible; nothing is
// merged or deleted here.
func (c *Consolidator) canonicalizeTopics(ctx context.Context, memories []Memory, result *ConsolidationResult) error {
	groups := make(map[[2]string][]Memory)
	var order [][2]string
	for _, m := range memories {
		key := [2]string{m.Category, m.Topic}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		// group preserves the strongest-first load order; everything
		// after the canonical head is demoted.
		var demoted []string
		for _, m := range group[1:] {
			demoted = append(demoted, m.ID)
		}
		_, err = tx.Exec(ctx, `
			UPDATE agentic_memory_schema.memories
			SET status = 'supporting', last_updated = now()
			WHERE id = ANY($1)`,
			demoted)
		if err != nil {
			return err
		}
		result.Demoted += len(demoted)
	}

	return tx.Commit(ctx)
}
