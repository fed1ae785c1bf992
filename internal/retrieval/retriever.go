package retrieval

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mnemo/internal/embedding"
	"mnemo/internal/logging"
	"mnemo/internal/memory"
)

const (
	// FactualMinConfidence filters low-confidence facts out of ANN search.
	FactualMinConfidence = 0.65
	// DistanceFallback qualifies a row with no topic match if it is still
	// reasonably close.
	DistanceFallback = 1.05
	// EpisodicLimit caps the episodic priming set.
	EpisodicLimit = 10
	// episodicBoostConfidence is the floor for an episodic row to boost a
	// factual row it is contained in.
	episodicBoostConfidence = 0.8
	episodicBoost           = 1.5

	perChunkLimit = 10
)

// categoryCaps limits how many rows each category may contribute, indexed
// by intent. Unlisted categories get one row.
var categoryCaps = map[Intent]map[string]int{
	IntentExploratory: {
		"technical_context": 3,
		"problem_domain":    3,
		"constraint":        2,
		"preference":        1,
	},
	IntentFocused: {
		"technical_context": 2,
		"problem_domain":    1,
		"constraint":        1,
	},
	IntentMinimal: {
		"technical_context": 1,
		"constraint":        1,
	},
}

func capFor(intent Intent, category string) int {
	if caps, ok := categoryCaps[intent]; ok {
		if n, ok := caps[category]; ok {
			return n
		}
	}
	return 1
}

// Result carries the two retrieval sets. They never mix: episodic rows
// prime reasoning, factual rows ground it.
type Result struct {
	Intent   Intent
	Episodic []memory.Memory
	Factual  []memory.ScoredMemory
}

// Retriever assembles memory context for a query: intent classification,
// episodic priming, and chunked factual ANN search with scoring and
// per-category caps.
type Retriever struct {
	store      *memory.Store
	embedder   embedding.Embedder
	classifier *Classifier
	logger     logging.Logger

	// IncludeSupporting widens factual search past active rows.
	IncludeSupporting bool
}

func NewRetriever(store *memory.Store, embedder embedding.Embedder, classifier *Classifier, logger logging.Logger) *Retriever {
	return &Retriever{
		store:      store,
		embedder:   embedder,
		classifier: classifier,
		logger:     logging.OrNop(logger),
	}
}

// Retrieve runs the full pipeline for one query.
func (r *Retriever) Retrieve(ctx context.Context, userID, query string) (Result, error) {
	chunks := ChunkQuery(query)
	if len(chunks) == 0 {
		return Result{Intent: IntentMinimal}, nil
	}

	intent, err := r.classifier.Classify(ctx, query)
	if err != nil {
		// Misclassification is survivable; minimal keeps retrieval lean.
		r.logger.Warn("intent classification failed, defaulting to minimal: %v", err)
		intent = IntentMinimal
	}

	episodic, err := r.retrieveEpisodic(ctx, userID, chunks)
	if err != nil {
		return Result{}, err
	}

	factual, err := r.retrieveFactual(ctx, userID, query, chunks, intent, episodic)
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("retrieved %d episodic, %d factual (intent %s) for %s",
		len(episodic), len(factual), intent, userID)
	return Result{Intent: intent, Episodic: episodic, Factual: factual}, nil
}

// retrieveEpisodic loads all live episodic rows and orders them by advisory
// chunk overlap, then confidence, then recency.
func (r *Retriever) retrieveEpisodic(ctx context.Context, userID string, chunks []string) ([]memory.Memory, error) {
	rows, err := r.store.ActiveEpisodic(ctx, userID)
	if err != nil {
		return nil, err
	}

	overlap := make(map[string]int, len(rows))
	for _, row := range rows {
		fact := strings.ToLower(row.Fact)
		for _, chunk := range chunks {
			if strings.Contains(fact, strings.ToLower(chunk)) {
				overlap[row.ID]++
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if overlap[rows[i].ID] != overlap[rows[j].ID] {
			return overlap[rows[i].ID] > overlap[rows[j].ID]
		}
		if rows[i].Confidence != rows[j].Confidence {
			return rows[i].Confidence > rows[j].Confidence
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	if len(rows) > EpisodicLimit {
		rows = rows[:EpisodicLimit]
	}
	return rows, nil
}

// retrieveFactual embeds chunks concurrently, searches per chunk, then
// dedupes, qualifies, scores, and caps.
func (r *Retriever) retrieveFactual(ctx context.Context, userID, query string, chunks []string, intent Intent, episodic []memory.Memory) ([]memory.ScoredMemory, error) {
	perChunk := make([][]memory.ScoredMemory, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			emb, err := r.embedder.Embed(gctx, chunk)
			if err != nil {
				return err
			}
			rows, err := r.store.SearchFactual(gctx, userID, emb, FactualMinConfidence, r.IncludeSupporting, perChunkLimit)
			if err != nil {
				return err
			}
			perChunk[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dedupe by (category, topic), first occurrence wins; chunk order
	// keeps the result deterministic.
	seen := map[[2]string]bool{}
	var candidates []memory.ScoredMemory
	for _, rows := range perChunk {
		for _, row := range rows {
			key := [2]string{row.Category, row.Topic}
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, row)
		}
	}

	tokens := queryTokens(query)
	type scored struct {
		row        memory.ScoredMemory
		score      float64
		topicMatch bool
	}
	var qualified []scored
	for _, row := range candidates {
		match := topicMatches(row.Topic, tokens)
		if !match && row.Distance > DistanceFallback {
			continue
		}
		qualified = append(qualified, scored{
			row:        row,
			score:      scoreRow(row, match, episodic),
			topicMatch: match,
		})
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].score > qualified[j].score
	})

	counts := map[string]int{}
	var out []memory.ScoredMemory
	for _, q := range qualified {
		if counts[q.row.Category] >= capFor(intent, q.row.Category) {
			continue
		}
		counts[q.row.Category]++
		out = append(out, q.row)
	}
	return out, nil
}

// scoreRow ranks one qualified factual row. A strong episodic observation
// textually contained in the fact boosts it: the user is demonstrably in
// that context right now.
func scoreRow(row memory.ScoredMemory, topicMatch bool, episodic []memory.Memory) float64 {
	score := 1 - min(row.Distance, 1)
	if topicMatch {
		score += 2
	}
	score += row.Importance / 10
	score += row.Confidence

	fact := strings.ToLower(row.Fact)
	for _, ep := range episodic {
		if ep.Confidence >= episodicBoostConfidence &&
			strings.Contains(fact, strings.ToLower(ep.Fact)) {
			score += episodicBoost
			break
		}
	}
	return score
}
