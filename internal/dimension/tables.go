package dimension

// Fixed compatibility tables. These encode product decisions, not learned
// statistics; changing them changes scoring for every pair, so they live in
// one place.

// compatiblePreferences lists near-synonym communication preference pairs.
// An exact preference match always scores higher than a pair listed here,
// which scores higher than an unlisted mismatch.
var compatiblePreferences = [][2]string{
	{"texting", "voice notes"},
	{"calls", "voice notes"},
	{"deep", "philosophical"},
	{"deep", "meaningful"},
	{"light", "casual"},
	{"playful", "casual"},
	{"open", "expressive"},
	{"open", "direct"},
	{"reserved", "private"},
	{"talk it out", "calm discussion"},
	{"direct", "honest"},
	{"space first", "cool off"},
}

// complementaryTraits lists opposite trait names that tend to balance each
// other in a pairing. A complementary pair scores higher than two identical
// trait names, which score higher than unrelated names.
var complementaryTraits = [][2]string{
	{"introverted", "extroverted"},
	{"spontaneous", "organized"},
	{"analytical", "creative"},
	{"adventurous", "cautious"},
	{"talkative", "good listener"},
	{"dreamer", "pragmatic"},
	{"intense", "easygoing"},
}

// emotionalStyleGroups are keyword clusters used to detect an emotional
// style from trait names and descriptions.
var emotionalStyleGroups = map[string][]string{
	"empathic":    {"empathetic", "empathic", "sensitive", "compassionate", "caring", "warm"},
	"grounded":    {"calm", "grounded", "patient", "stable", "steady"},
	"passionate":  {"passionate", "intense", "expressive", "fiery"},
	"reflective":  {"thoughtful", "reflective", "introspective", "deep"},
	"lighthearted": {"playful", "humorous", "funny", "lighthearted"},
}

// complementaryStyles are emotional style groups that pair well despite
// being different.
var complementaryStyles = [][2]string{
	{"passionate", "grounded"},
	{"reflective", "lighthearted"},
	{"empathic", "passionate"},
}

// goalKeywords flag a free-form response as goal-like; only such responses
// feed the life-goals extraction.
var goalKeywords = []string{"goal", "want", "hope", "future", "dream", "plan", "aspire"}

// goalCategories buckets extracted goal phrases by keyword membership.
var goalCategories = map[string][]string{
	"family":       {"family", "kids", "children", "marriage", "married", "partner", "parent"},
	"career":       {"career", "work", "job", "business", "professional", "startup"},
	"travel":       {"travel", "explore", "adventure", "abroad", "world"},
	"health":       {"health", "fitness", "wellness", "exercise", "run", "strong"},
	"creativity":   {"create", "creative", "art", "music", "write", "paint", "build"},
	"education":    {"learn", "learning", "study", "education", "knowledge", "degree", "read"},
	"spirituality": {"spiritual", "faith", "meditation", "mindful", "soul", "god"},
	"community":    {"community", "volunteer", "friends", "service", "give back", "neighborhood"},
}

// highPriorityGoals earn a small additive alignment bonus when shared.
var highPriorityGoals = []string{"family", "career", "spirituality"}

// lifestyleConflicts are tag pairs considered flatly incompatible; a pair
// carrying one of these bottoms out at lifestyleConflictFloor instead of
// whatever the raw overlap says.
var lifestyleConflicts = [][2]string{
	{"vegan", "carnivore"},
	{"vegan", "hunter"},
	{"vegetarian", "carnivore"},
	{"halal", "non-halal"},
	{"kosher", "non-kosher"},
	{"sober", "party drinker"},
	{"non-smoker", "smoker"},
}

// ComplementaryTraitPairs exposes the complementary trait-name table so
// insight generation can describe the balance it found.
func ComplementaryTraitPairs() [][2]string {
	return complementaryTraits
}

// pairSet builds a symmetric lookup from a pair list.
func pairSet(pairs [][2]string) map[[2]string]struct{} {
	set := make(map[[2]string]struct{}, 2*len(pairs))
	for _, p := range pairs {
		set[[2]string{p[0], p[1]}] = struct{}{}
		set[[2]string{p[1], p[0]}] = struct{}{}
	}
	return set
}

var (
	compatiblePreferenceSet = pairSet(compatiblePreferences)
	complementaryTraitSet   = pairSet(complementaryTraits)
	complementaryStyleSet   = pairSet(complementaryStyles)
	lifestyleConflictSet    = pairSet(lifestyleConflicts)
)
