// Package insight turns a scored pair into the human-readable pieces the
// platform shows on a connection screen: what makes the pairing unusual,
// where it is strong, where it needs work, and how to open a conversation.
// It consumes the final breakdown, never raw scoring internals.
package insight

import (
	"fmt"
	"strings"

	"github.com/Alexsovich5/DAPP-sub000/internal/dimension"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

const (
	maxUniqueFactors = 3
	maxStrengths     = 3
	maxGrowthAreas   = 2
	maxStarters      = 3
)

// rareInterests is the curated list of uncommon interests worth calling
// out when shared.
var rareInterests = []string{
	"philosophy", "meditation", "astronomy", "poetry", "chess",
	"birdwatching", "stargazing", "calligraphy", "foraging", "letterpress",
}

// deepValueKeywords flag values-text overlap that goes beyond hobbies.
var deepValueKeywords = []string{"meaning", "purpose", "authenticity", "growth", "compassion"}

// Insights is everything the generator produces for one scored pair.
type Insights struct {
	UniqueFactors        []string `json:"unique_factors"`
	Strengths            []string `json:"strengths"`
	GrowthAreas          []string `json:"growth_areas"`
	ConversationStarters []string `json:"conversation_starters"`
}

// Generate builds insights from two profiles and their dimension breakdown
// (scores on the 0–100 scale). Strengths and growth areas are guaranteed
// non-empty; conversation starters always include at least the fallback.
func Generate(a, b *profile.UserProfile, breakdown map[string]float64) Insights {
	shared := dimension.SharedInterests(a, b)
	factors := uniqueFactors(a, b, shared)
	return Insights{
		UniqueFactors:        factors,
		Strengths:            strengths(breakdown),
		GrowthAreas:          growthAreas(breakdown),
		ConversationStarters: starters(shared, breakdown, factors),
	}
}

// uniqueFactors reports what is distinctive about this pairing, in
// discovery order: rare shared interests, then complementary trait
// energies, then shared deep values. Capped at three.
func uniqueFactors(a, b *profile.UserProfile, shared []string) []string {
	var factors []string

	sharedSet := make(map[string]struct{}, len(shared))
	for _, s := range shared {
		sharedSet[s] = struct{}{}
	}
	for _, rare := range rareInterests {
		if len(factors) >= maxUniqueFactors {
			return factors
		}
		if _, ok := sharedSet[rare]; ok {
			factors = append(factors, fmt.Sprintf("a rare shared passion for %s", rare))
		}
	}

	textA := " " + profile.Combine(a) + " "
	textB := " " + profile.Combine(b) + " "
	for _, pair := range dimension.ComplementaryTraitPairs() {
		if len(factors) >= maxUniqueFactors {
			return factors
		}
		if containsWord(textA, pair[0]) && containsWord(textB, pair[1]) ||
			containsWord(textA, pair[1]) && containsWord(textB, pair[0]) {
			factors = append(factors, fmt.Sprintf("a balance of %s and %s energies", pair[0], pair[1]))
		}
	}

	valuesA := " " + valuesText(a) + " "
	valuesB := " " + valuesText(b) + " "
	for _, kw := range deepValueKeywords {
		if len(factors) >= maxUniqueFactors {
			return factors
		}
		if containsWord(valuesA, kw) && containsWord(valuesB, kw) {
			factors = append(factors, fmt.Sprintf("a shared commitment to %s", kw))
		}
	}

	return factors
}

func valuesText(p *profile.UserProfile) string {
	var parts []string
	parts = append(parts, p.Philosophy)
	for cat, statements := range p.CoreValues {
		parts = append(parts, cat)
		parts = append(parts, statements...)
	}
	return profile.Normalize(strings.Join(parts, " "))
}

func containsWord(paddedText, word string) bool {
	return strings.Contains(paddedText, " "+word+" ")
}

// strengthRules map breakdown thresholds to strength phrasing, checked in
// order so the highest-signal dimensions surface first.
var strengthRules = []struct {
	dim       string
	threshold float64
	text      string
}{
	{"values", 80, "strongly aligned life goals and values"},
	{"interests", 80, "plenty of shared ground to spend time on"},
	{"communication", 80, "naturally compatible communication styles"},
	{"personality", 75, "personalities that click"},
	{"emotional_depth", 75, "matched emotional wavelength"},
	{"demographic", 85, "compatible day-to-day lifestyles"},
}

func strengths(breakdown map[string]float64) []string {
	var out []string
	for _, rule := range strengthRules {
		if len(out) >= maxStrengths {
			break
		}
		if score, ok := breakdown[rule.dim]; ok && score >= rule.threshold {
			out = append(out, rule.text)
		}
	}
	if len(out) == 0 {
		out = append(out, "genuine potential worth exploring")
	}
	return out
}

var growthRules = []struct {
	dim       string
	threshold float64
	text      string
}{
	{"communication", 60, "finding a shared communication rhythm"},
	{"emotional_depth", 60, "opening up at a similar pace"},
	{"values", 50, "understanding each other's long-term priorities"},
	{"demographic", 40, "bridging different day-to-day routines"},
}

func growthAreas(breakdown map[string]float64) []string {
	var out []string
	for _, rule := range growthRules {
		if len(out) >= maxGrowthAreas {
			break
		}
		if score, ok := breakdown[rule.dim]; ok && score < rule.threshold {
			out = append(out, rule.text)
		}
	}
	if len(out) == 0 {
		out = append(out, "learning what makes each other tick")
	}
	return out
}

// starterByDimension parameterizes an opener on the pair's strongest
// dimension.
var starterByDimension = map[string]string{
	"interests":       "Your interests overlap a lot — what's one you could talk about for hours?",
	"values":          "What does a really good decade from now look like for you?",
	"communication":   "Long voice notes or rapid-fire texts — which one is really you?",
	"personality":     "What's something people usually get wrong about you at first?",
	"emotional_depth": "What's something small that moved you recently?",
	"demographic":     "What's your favorite thing about where you live right now?",
}

const fallbackStarter = "What's been the best part of your week so far?"

// starters builds up to three openers: one from the first shared interest,
// one from the highest-scoring dimension, one from the top unique factor.
// The fixed fallback guarantees a non-empty list.
func starters(shared []string, breakdown map[string]float64, factors []string) []string {
	var out []string
	if len(shared) > 0 {
		out = append(out, fmt.Sprintf("I noticed we're both into %s — what first pulled you toward it?", shared[0]))
	}
	if top, ok := topDimension(breakdown); ok {
		if starter, known := starterByDimension[top]; known {
			out = append(out, starter)
		}
	}
	if len(factors) > 0 {
		out = append(out, fmt.Sprintf("Apparently we have %s. Does that ring true for you?", factors[0]))
	}
	if len(out) == 0 {
		out = append(out, fallbackStarter)
	}
	if len(out) > maxStarters {
		out = out[:maxStarters]
	}
	return out
}

// topDimension picks the highest-scoring breakdown entry, breaking ties by
// canonical dimension order so output stays deterministic.
func topDimension(breakdown map[string]float64) (string, bool) {
	best, bestScore, found := "", -1.0, false
	for _, name := range dimension.Names() {
		if score, ok := breakdown[name]; ok && score > bestScore {
			best, bestScore, found = name, score, true
		}
	}
	return best, found
}
