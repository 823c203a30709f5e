// Package embedding derives fixed-length unit vectors from a profile's
// qualitative attributes so pairs can be compared in vector space. All
// generation is deterministic: the same profile always yields bit-identical
// vectors, including the jitter that keeps sub-blocks from degenerating
// into equal components.
package embedding

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// Fixed vector dimensions per attribute.
const (
	PersonalityDim   = 128
	InterestsDim     = 64
	ValuesDim        = 64
	CommunicationDim = 32
)

// ProfileEmbedding holds the four derived vectors for one profile version.
// It is owned by the engine: produced here, cached by the engine, and
// never handed out for mutation.
type ProfileEmbedding struct {
	UserID        string    `json:"user_id"`
	Version       int       `json:"version"`
	Personality   []float64 `json:"personality"`
	Interests     []float64 `json:"interests"`
	Values        []float64 `json:"values"`
	Communication []float64 `json:"communication"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// category couples a name with the keywords that score it from text.
type category struct {
	name     string
	keywords []string
}

var personalityCategories = []category{
	{"openness", []string{"curious", "creative", "imaginative", "new", "explore", "art", "idea"}},
	{"conscientiousness", []string{"organized", "plan", "disciplined", "reliable", "careful", "list"}},
	{"extraversion", []string{"outgoing", "social", "party", "people", "talkative", "energetic"}},
	{"agreeableness", []string{"kind", "caring", "warm", "helpful", "compassionate", "patient"}},
	{"stability", []string{"calm", "steady", "grounded", "relaxed", "balanced", "resilient"}},
}

var interestCategories = []category{
	{"outdoors", []string{"hiking", "camping", "climbing", "nature", "outdoor", "garden"}},
	{"arts", []string{"art", "museum", "paint", "design", "film", "theater", "photography"}},
	{"music", []string{"music", "concert", "jazz", "piano", "guitar", "sing", "vinyl"}},
	{"sports", []string{"gym", "running", "yoga", "climbing", "cycling", "soccer", "fitness"}},
	{"food", []string{"cooking", "baking", "restaurant", "coffee", "wine", "food"}},
	{"mind", []string{"reading", "philosophy", "chess", "writing", "science", "history", "astronomy"}},
	{"travel", []string{"travel", "backpacking", "language", "culture", "abroad"}},
	{"games", []string{"games", "gaming", "board games", "puzzle", "trivia"}},
}

var valueCategories = []category{
	{"family", []string{"family", "kids", "children", "marriage", "parent"}},
	{"career", []string{"career", "work", "ambition", "business", "success"}},
	{"growth", []string{"growth", "learn", "improve", "better", "develop"}},
	{"adventure", []string{"adventure", "travel", "explore", "risk", "spontaneous"}},
	{"health", []string{"health", "fitness", "wellness", "balance", "exercise"}},
	{"creativity", []string{"create", "art", "music", "express", "build"}},
	{"spirituality", []string{"spiritual", "faith", "meaning", "purpose", "mindful"}},
	{"community", []string{"community", "friends", "volunteer", "service", "belong"}},
}

var communicationCategories = []category{
	{"expressive", []string{"open", "expressive", "share", "emotional", "affectionate"}},
	{"direct", []string{"direct", "honest", "blunt", "straightforward", "clear"}},
	{"thoughtful", []string{"thoughtful", "deep", "reflective", "listener", "considered"}},
	{"playful", []string{"playful", "humor", "funny", "banter", "teasing"}},
}

// Generate derives the four vectors for a profile. It never fails; a
// profile with no matching text yields uniform (but still unit-normalized
// and jittered) vectors rather than zero vectors, so downstream cosine
// comparison stays defined.
func Generate(p *profile.UserProfile) *ProfileEmbedding {
	text := profile.Combine(p)
	interestText := profile.Normalize(strings.Join(p.Interests, " "))
	valuesText := valuesBlob(p)
	commText := communicationBlob(p)

	return &ProfileEmbedding{
		UserID:        p.ID,
		Version:       p.Version,
		Personality:   buildVector(p.ID, "personality", PersonalityDim, personalityCategories, text),
		Interests:     buildVector(p.ID, "interests", InterestsDim, interestCategories, interestText),
		Values:        buildVector(p.ID, "values", ValuesDim, valueCategories, valuesText),
		Communication: buildVector(p.ID, "communication", CommunicationDim, communicationCategories, commText),
		GeneratedAt:   time.Now().UTC(),
	}
}

func valuesBlob(p *profile.UserProfile) string {
	var parts []string
	parts = append(parts, p.Philosophy)
	for cat, statements := range p.CoreValues {
		parts = append(parts, cat)
		parts = append(parts, statements...)
	}
	return profile.Normalize(strings.Join(parts, " "))
}

func communicationBlob(p *profile.UserProfile) string {
	var parts []string
	for aspect, pref := range p.Communication {
		parts = append(parts, aspect, pref)
	}
	return profile.Normalize(strings.Join(parts, " "))
}

// buildVector fills one sub-block per category, scores each block from
// keyword presence, applies deterministic jitter, and unit-normalizes the
// result. Sub-block boundaries are fixed by category order; the final
// block absorbs any remainder of dim / len(categories).
func buildVector(profileID, kind string, dim int, categories []category, text string) []float64 {
	vec := make([]float64, dim)
	blockSize := dim / len(categories)
	blob := " " + text + " "

	for i, cat := range categories {
		start := i * blockSize
		end := start + blockSize
		if i == len(categories)-1 {
			end = dim
		}

		score := keywordScore(blob, cat.keywords)
		rng := blockRNG(profileID, kind, cat.name)
		for j := start; j < end; j++ {
			// Jitter within ±10% keeps block components distinct without
			// drowning the keyword signal.
			vec[j] = score * (0.9 + 0.2*rng.Float64())
		}
	}

	normalize(vec)
	return vec
}

// keywordScore rates category affinity in (0,1]: a small floor keeps
// unmatched categories represented, each keyword hit adds weight, and the
// score saturates at 1.
func keywordScore(blob string, keywords []string) float64 {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(blob, " "+kw+" ") || strings.Contains(blob, " "+kw) {
			hits++
		}
	}
	score := 0.1 + 0.3*float64(hits)
	if score > 1 {
		return 1
	}
	return score
}

// blockRNG derives a deterministic generator for one sub-block from a
// stable hash of the profile id and block identity.
func blockRNG(profileID, kind, block string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(profileID))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(block))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func normalize(vec []float64) {
	var sumSq float64
	for _, x := range vec {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] /= norm
	}
}
