// Package dimension implements the independent compatibility axes. Every
// scorer maps two profiles to [0,1], is symmetric in its arguments, and
// returns a documented neutral default instead of failing when the data it
// needs is missing on either side.
package dimension

import (
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// Neutral is the mid-range default substituted when a scorer has no data
// to work with, so missing fields bias the aggregate toward neither
// extreme.
const Neutral = 0.5

// Scorer rates one compatibility axis for a pair of profiles in [0,1].
type Scorer func(a, b *profile.UserProfile) float64

// Dimension couples a stable breakdown key with its scorer.
type Dimension struct {
	Name  string
	Score Scorer
}

// All returns every dimension in canonical order. The names are the keys
// used in result breakdowns and weight maps.
func All() []Dimension {
	return []Dimension{
		{Name: "interests", Score: Interests},
		{Name: "values", Score: LifeGoals},
		{Name: "communication", Score: Communication},
		{Name: "personality", Score: Personality},
		{Name: "emotional_depth", Score: EmotionalDepth},
		{Name: "demographic", Score: Demographic},
	}
}

// Names returns the canonical dimension names in order.
func Names() []string {
	dims := All()
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}
	return names
}

// clamp01 keeps bonus arithmetic inside the contract range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// setJaccard is |A∩B| / |A∪B| over normalized string sets.
func setJaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalizedSet folds a string slice into a set of normalized entries.
func normalizedSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if n := profile.Normalize(it); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
