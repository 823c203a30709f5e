package dimension

import (
	"time"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// lifestyleConflictFloor is what a pair scores when their lifestyle tags
// are flatly incompatible (e.g. vegan vs carnivore): low, but never the
// absolute bottom. Tags describe habits, not dealbreakers the engine can
// adjudicate.
const lifestyleConflictFloor = 0.3

// ageSteps is the bell-curve step function on age difference in years.
var ageSteps = []struct {
	maxDiff int
	score   float64
}{
	{2, 0.95},
	{5, 0.85},
	{8, 0.7},
	{12, 0.5},
	{15, 0.4},
}

const ageBeyondStepsScore = 0.3

// Demographic averages age, location, and lifestyle sub-scores over
// whichever of the three both profiles provide data for. With no usable
// sub-score at all it returns Neutral.
func Demographic(a, b *profile.UserProfile) float64 {
	now := time.Now().UTC()
	var total float64
	var scored int

	if ageA, ageB := a.Age(now), b.Age(now); ageA >= 0 && ageB >= 0 {
		total += AgeCompatibility(ageA, ageB)
		scored++
	}
	if a.Location != "" && b.Location != "" {
		total += locationOverlap(a.Location, b.Location)
		scored++
	}
	if len(a.Lifestyle) > 0 && len(b.Lifestyle) > 0 {
		total += lifestyleCompatibility(a.Lifestyle, b.Lifestyle)
		scored++
	}

	if scored == 0 {
		return Neutral
	}
	return total / float64(scored)
}

// AgeCompatibility maps an age difference onto the fixed step curve:
// near-identical ages score 0.95, decaying in steps to 0.3 beyond 15
// years. Exported for direct use in tests and the API status payload.
func AgeCompatibility(ageA, ageB int) float64 {
	diff := ageA - ageB
	if diff < 0 {
		diff = -diff
	}
	for _, step := range ageSteps {
		if diff <= step.maxDiff {
			return step.score
		}
	}
	return ageBeyondStepsScore
}

// locationOverlap is shared-token Jaccard over free-text locations, so
// "Portland, OR" and "Portland Oregon" still overlap on the city token.
func locationOverlap(locA, locB string) float64 {
	return setJaccard(profile.TokenSet(locA), profile.TokenSet(locB))
}

// lifestyleCompatibility is tag-set overlap, floored when any tag pair is
// in the conflict table.
func lifestyleCompatibility(tagsA, tagsB []string) float64 {
	setA := normalizedSet(tagsA)
	setB := normalizedSet(tagsB)

	for ta := range setA {
		for tb := range setB {
			if _, ok := lifestyleConflictSet[[2]string{ta, tb}]; ok {
				return lifestyleConflictFloor
			}
		}
	}
	return setJaccard(setA, setB)
}
