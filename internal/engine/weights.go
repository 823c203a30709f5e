package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alexsovich5/DAPP-sub000/internal/dimension"
)

// ErrInvalidWeights marks a dimension weight configuration rejected at
// load time. Weights are never silently renormalized: a config that does
// not sum to 1 is someone's mistake and must fail fast.
var ErrInvalidWeights = errors.New("invalid dimension weights")

// weightSumTolerance is how far from 1.0 a weight sum may drift before the
// configuration is rejected.
const weightSumTolerance = 0.01

// Weights maps dimension names to their share of the overall score.
type Weights map[string]float64

// DefaultWeights is the built-in aggregation policy.
func DefaultWeights() Weights {
	return Weights{
		"interests":       0.20,
		"values":          0.20,
		"communication":   0.15,
		"personality":     0.15,
		"emotional_depth": 0.15,
		"demographic":     0.15,
	}
}

// NewWeights validates a weight map: every key must be a known dimension,
// every weight non-negative, and the sum within tolerance of 1.0. A nil
// map yields the defaults.
func NewWeights(raw map[string]float64) (Weights, error) {
	if raw == nil {
		return DefaultWeights(), nil
	}

	known := make(map[string]struct{})
	for _, name := range dimension.Names() {
		known[name] = struct{}{}
	}

	sum := 0.0
	for name, w := range raw {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: unknown dimension %q", ErrInvalidWeights, name)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: %s has negative weight %v", ErrInvalidWeights, name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v, want 1.0 ± %v", ErrInvalidWeights, sum, weightSumTolerance)
	}

	weights := make(Weights, len(raw))
	for name, w := range raw {
		weights[name] = w
	}
	return weights, nil
}
