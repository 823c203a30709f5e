package dimension

import (
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

const (
	traitSimilarityWeight   = 0.6
	traitComplementWeight   = 0.4
	complementaryPairScore  = 0.9
	identicalTraitPairScore = 0.7
	unrelatedTraitPairScore = 0.4
)

// Personality blends trait similarity (word overlap between descriptions
// of same-named traits) with trait complementarity, where opposite names
// from the fixed table outrank identical names, which outrank unrelated
// ones. Either profile missing traits entirely scores Neutral.
func Personality(a, b *profile.UserProfile) float64 {
	if len(a.Traits) == 0 || len(b.Traits) == 0 {
		return Neutral
	}
	sim := traitDescriptionSimilarity(a, b)
	comp := traitComplementarity(a, b)
	return clamp01(traitSimilarityWeight*sim + traitComplementWeight*comp)
}

// traitDescriptionSimilarity averages word-set Jaccard over traits both
// profiles named identically. No shared trait names is Neutral: the
// profiles describe different things, which says nothing either way.
func traitDescriptionSimilarity(a, b *profile.UserProfile) float64 {
	var total float64
	var matched int
	for name, descA := range a.Traits {
		descB, ok := b.Traits[name]
		if !ok {
			continue
		}
		matched++
		total += setJaccard(profile.TokenSet(descA), profile.TokenSet(descB))
	}
	if matched == 0 {
		return Neutral
	}
	return total / float64(matched)
}

// traitComplementarity classifies every cross-profile trait-name pair and
// averages the pairs that relate at all; a pair of profiles whose names
// never relate scores the unrelated baseline.
func traitComplementarity(a, b *profile.UserProfile) float64 {
	var total float64
	var related int
	for nameA := range a.Traits {
		na := profile.Normalize(nameA)
		for nameB := range b.Traits {
			nb := profile.Normalize(nameB)
			if _, ok := complementaryTraitSet[[2]string{na, nb}]; ok {
				total += complementaryPairScore
				related++
			} else if na == nb && na != "" {
				total += identicalTraitPairScore
				related++
			}
		}
	}
	if related == 0 {
		return unrelatedTraitPairScore
	}
	return total / float64(related)
}
