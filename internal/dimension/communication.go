package dimension

import (
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

const (
	prefExactScore      = 1.0
	prefCompatibleScore = 0.75
	prefMismatchScore   = 0.25
)

// Communication compares communication preference maps aspect by aspect.
// An aspect present on only one side is skipped; with either map absent
// entirely the scorer returns Neutral. Exact preference matches outrank
// compatible near-synonym pairs, which outrank mismatches.
func Communication(a, b *profile.UserProfile) float64 {
	if len(a.Communication) == 0 || len(b.Communication) == 0 {
		return Neutral
	}

	var total float64
	var compared int
	for aspect, prefA := range a.Communication {
		prefB, ok := b.Communication[aspect]
		if !ok {
			continue
		}
		na, nb := profile.Normalize(prefA), profile.Normalize(prefB)
		if na == "" || nb == "" {
			continue
		}
		compared++
		switch {
		case na == nb:
			total += prefExactScore
		case isCompatiblePreference(na, nb):
			total += prefCompatibleScore
		default:
			total += prefMismatchScore
		}
	}

	if compared == 0 {
		// Maps exist but share no aspects; nothing to compare.
		return Neutral
	}
	return total / float64(compared)
}

func isCompatiblePreference(a, b string) bool {
	_, ok := compatiblePreferenceSet[[2]string{a, b}]
	return ok
}
