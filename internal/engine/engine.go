// Package engine is the compatibility scoring aggregator: it fans out to
// the dimension scorers, the corpus-backed semantic similarity, and the
// embedding comparison, and folds everything into one immutable Result.
// A single pair is a pure computation apart from reading the published
// corpus model, so scoring runs on any goroutine without coordination.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Alexsovich5/DAPP-sub000/internal/corpus"
	"github.com/Alexsovich5/DAPP-sub000/internal/dimension"
	"github.com/Alexsovich5/DAPP-sub000/internal/embedding"
	"github.com/Alexsovich5/DAPP-sub000/internal/insight"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// batchConcurrency bounds the worker fan-out for batch scoring.
const batchConcurrency = 4

// Engine scores profile pairs. Construct one per configuration; there is
// no process-wide instance, so tests and tenants get independent engines
// with independent corpus models.
type Engine struct {
	corpus  *corpus.Manager
	weights Weights
	cache   *EmbeddingCache
	logger  *slog.Logger
}

// New creates an Engine. corpusMgr must be non-nil (use an untrained
// manager for pure keyword-fallback scoring); cache may be nil, in which
// case embeddings are generated per call without caching.
func New(corpusMgr *corpus.Manager, weights Weights, cache *EmbeddingCache) *Engine {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Engine{
		corpus:  corpusMgr,
		weights: weights,
		cache:   cache,
		logger:  slog.Default(),
	}
}

// Weights returns the engine's aggregation policy.
func (e *Engine) Weights() Weights {
	w := make(Weights, len(e.weights))
	for k, v := range e.weights {
		w[k] = v
	}
	return w
}

// Corpus exposes the engine's corpus manager for training.
func (e *Engine) Corpus() *corpus.Manager {
	return e.corpus
}

// Train fits the corpus model over the given profiles. See corpus.Manager.
func (e *Engine) Train(ctx context.Context, profiles []*profile.UserProfile) {
	e.corpus.Train(ctx, profiles)
}

// Score rates one pair. It never returns an error and never panics: any
// internal failure is converted into the degraded mid-range result with
// the Err marker set, and invalid input is reported the same way.
func (e *Engine) Score(ctx context.Context, a, b *profile.UserProfile) (result Result) {
	now := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scoring panicked, returning degraded result",
				"user_a", safeID(a), "user_b", safeID(b), "panic", r)
			result = degradedResult(safeID(a), safeID(b), fmt.Sprintf("computation failed: %v", r), now)
		}
	}()

	if err := a.Validate(); err != nil {
		return degradedResult(safeID(a), safeID(b), fmt.Sprintf("invalid profile: %v", err), now)
	}
	if err := b.Validate(); err != nil {
		return degradedResult(safeID(a), safeID(b), fmt.Sprintf("invalid profile: %v", err), now)
	}
	if err := ctx.Err(); err != nil {
		return degradedResult(a.ID, b.ID, fmt.Sprintf("cancelled: %v", err), now)
	}

	breakdown := make(map[string]float64, len(e.weights))
	overall := 0.0
	for _, dim := range dimension.All() {
		score := dim.Score(a, b)
		breakdown[dim.Name] = round1(score * 100)
		overall += score * e.weights[dim.Name]
	}

	confidence := (a.Completeness() + b.Completeness()) / 2

	return Result{
		ID:          uuid.NewString(),
		UserA:       a.ID,
		UserB:       b.ID,
		Overall:     round1(overall * 100),
		Confidence:  round1(confidence * 100),
		Breakdown:   breakdown,
		Semantic:    e.semantic(a, b),
		Insights:    insight.Generate(a, b, breakdown),
		GeneratedAt: now,
	}
}

// semantic computes the corpus text similarity and embedding alignment.
// Both are informational signals alongside the weighted overall.
func (e *Engine) semantic(a, b *profile.UserProfile) SemanticScores {
	sim := e.corpus.Similarity(profile.Combine(a), profile.Combine(b))

	var embA, embB *embedding.ProfileEmbedding
	if e.cache != nil {
		embA, embB = e.cache.Get(a), e.cache.Get(b)
	} else {
		embA, embB = embedding.Generate(a), embedding.Generate(b)
	}

	alignment := embedding.Compare(embA, embB)
	for k, v := range alignment {
		alignment[k] = round1(v * 100)
	}
	return SemanticScores{
		TextSimilarity:  round1(sim * 100),
		VectorAlignment: alignment,
	}
}

// ScoreBatch rates one target against every candidate with bounded
// concurrency. Pairs that degrade (or fail validation) are excluded from
// the result set and counted. Candidate order is preserved for the pairs
// that succeed. The only error returned is context cancellation.
func (e *Engine) ScoreBatch(ctx context.Context, target *profile.UserProfile, candidates []*profile.UserProfile) (BatchResult, error) {
	if err := target.Validate(); err != nil {
		return BatchResult{}, fmt.Errorf("target profile: %w", err)
	}

	results := make([]Result, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, cand := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.Score(gCtx, target, cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Results: make([]Result, 0, len(candidates))}
	for _, r := range results {
		if r.Degraded() {
			batch.Failed++
			e.logger.Warn("pair excluded from batch", "user_a", r.UserA, "user_b", r.UserB, "error", r.Err)
			continue
		}
		batch.Results = append(batch.Results, r)
	}
	return batch, nil
}

func safeID(p *profile.UserProfile) string {
	if p == nil {
		return ""
	}
	return p.ID
}

// round1 rounds to one decimal on the 0–100 scale.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
