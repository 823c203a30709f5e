package embedding

import "math"

// NeutralScore is returned when either vector is absent: no evidence
// either way.
const NeutralScore = 0.5

// Compatibility compares two vectors by cosine similarity rescaled from
// [-1,1] to [0,1]. Absent vectors score the neutral 0.5; mismatched
// lengths or a zero-magnitude vector score 0; those are defects, not
// missing data.
func Compatibility(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return NeutralScore
	}
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}

// Compare scores each attribute vector pair of two profile embeddings.
// Keys match the attribute names used in result payloads.
func Compare(a, b *ProfileEmbedding) map[string]float64 {
	if a == nil || b == nil {
		return map[string]float64{
			"personality":   NeutralScore,
			"interests":     NeutralScore,
			"values":        NeutralScore,
			"communication": NeutralScore,
		}
	}
	return map[string]float64{
		"personality":   Compatibility(a.Personality, b.Personality),
		"interests":     Compatibility(a.Interests, b.Interests),
		"values":        Compatibility(a.Values, b.Values),
		"communication": Compatibility(a.Communication, b.Communication),
	}
}
