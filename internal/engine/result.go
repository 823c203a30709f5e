package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alexsovich5/DAPP-sub000/internal/insight"
)

// Degraded-result constants: what a pair scores when computation itself
// failed. Mid-range score, rock-bottom confidence.
const (
	degradedOverall    = 50.0
	degradedConfidence = 10.0
)

// Result is the immutable outcome of scoring one pair. Scores are on the
// 0–100 scale, rounded to one decimal. Err is empty for a normal result
// and carries a short marker when computation degraded to the default.
type Result struct {
	ID    string `json:"id"`
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`

	Overall    float64            `json:"overall_score"`
	Confidence float64            `json:"confidence"`
	Breakdown  map[string]float64 `json:"breakdown"`

	// Semantic reports the corpus-model text similarity and the per-vector
	// embedding alignment. Informational: it feeds insights and analytics,
	// not the weighted overall.
	Semantic SemanticScores `json:"semantic"`

	Insights insight.Insights `json:"insights"`

	GeneratedAt time.Time `json:"generated_at"`
	Err         string    `json:"error,omitempty"`
}

// SemanticScores carries the similarity signals on the 0–100 scale.
type SemanticScores struct {
	TextSimilarity  float64            `json:"text_similarity"`
	VectorAlignment map[string]float64 `json:"vector_alignment"`
}

// Degraded reports whether this result is the computation-failure default.
func (r Result) Degraded() bool {
	return r.Err != ""
}

func degradedResult(userA, userB, errMarker string, now time.Time) Result {
	return Result{
		ID:          uuid.NewString(),
		UserA:       userA,
		UserB:       userB,
		Overall:     degradedOverall,
		Confidence:  degradedConfidence,
		Breakdown:   map[string]float64{},
		GeneratedAt: now,
		Err:         errMarker,
	}
}

// BatchResult is the outcome of scoring one target against N candidates.
// Failed pairs are excluded from Results and counted, never retried.
type BatchResult struct {
	Results []Result `json:"results"`
	Failed  int      `json:"failed"`
}
