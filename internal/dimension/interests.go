package dimension

import (
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// bothEmptyInterestScore is the deliberate asymmetry in interest scoring:
// two profiles that both declared no interests are "no signal" and score
// mildly positive, while a profile with interests meeting one without
// scores zero. Having any interests at all is rewarded; see DESIGN.md
// before changing this.
const bothEmptyInterestScore = 0.7

// Interests is Jaccard overlap of the two normalized interest sets, with
// the documented both-empty / one-empty asymmetry.
func Interests(a, b *profile.UserProfile) float64 {
	setA := normalizedSet(a.Interests)
	setB := normalizedSet(b.Interests)

	switch {
	case len(setA) == 0 && len(setB) == 0:
		return bothEmptyInterestScore
	case len(setA) == 0 || len(setB) == 0:
		return 0
	}
	return setJaccard(setA, setB)
}

// SharedInterests returns the normalized interests present in both
// profiles, in a's declaration order. Used by insight generation.
func SharedInterests(a, b *profile.UserProfile) []string {
	setB := normalizedSet(b.Interests)
	var shared []string
	seen := make(map[string]struct{})
	for _, it := range a.Interests {
		n := profile.Normalize(it)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		if _, ok := setB[n]; ok {
			shared = append(shared, n)
			seen[n] = struct{}{}
		}
	}
	return shared
}
