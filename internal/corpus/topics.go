package corpus

import (
	"math"
	"math/rand"
)

const (
	// topicCount is the fixed number of latent topics fit over the corpus.
	topicCount = 10

	// topicIterations bounds the refinement loop. The model enriches
	// similarity scoring rather than deciding it, so a handful of passes
	// is enough.
	topicIterations = 15

	// topicSeed keeps centroid initialization reproducible: fitting the
	// same corpus twice yields the same topics.
	topicSeed = 0x5eed
)

// TopicModel holds latent topic centroids fit over the corpus's TF-IDF
// document vectors (spherical k-means). Projecting a transform vector onto
// the centroids yields a soft topic distribution used to enrich semantic
// similarity beyond raw term overlap.
type TopicModel struct {
	centroids [][]float64 // topicCount unit vectors in the term space
}

// fitTopics clusters the document vectors into topicCount unit centroids.
// Returns nil when the corpus is too small to support distinct topics.
func fitTopics(docVecs [][]float64) *TopicModel {
	usable := docVecs[:0:0]
	for _, v := range docVecs {
		if len(v) > 0 {
			usable = append(usable, v)
		}
	}
	if len(usable) < topicCount {
		return nil
	}
	dim := len(usable[0])

	rng := rand.New(rand.NewSource(topicSeed))
	centroids := make([][]float64, topicCount)
	perm := rng.Perm(len(usable))
	for i := range centroids {
		centroids[i] = append([]float64(nil), usable[perm[i]]...)
	}

	assignments := make([]int, len(usable))
	for iter := 0; iter < topicIterations; iter++ {
		changed := false
		for d, vec := range usable {
			best, bestSim := 0, math.Inf(-1)
			for c, cen := range centroids {
				if sim := cosine(vec, cen); sim > bestSim {
					best, bestSim = c, sim
				}
			}
			if assignments[d] != best {
				assignments[d] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids as normalized member sums. Empty clusters
		// keep their previous centroid.
		sums := make([][]float64, topicCount)
		counts := make([]int, topicCount)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for d, vec := range usable {
			c := assignments[d]
			counts[c]++
			for i, x := range vec {
				sums[c][i] += x
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			var sumSq float64
			for _, x := range sums[c] {
				sumSq += x * x
			}
			if sumSq == 0 {
				continue
			}
			norm := math.Sqrt(sumSq)
			for i := range sums[c] {
				sums[c][i] /= norm
			}
			centroids[c] = sums[c]
		}
	}

	return &TopicModel{centroids: centroids}
}

// Distribution projects a TF-IDF vector onto the topic centroids and
// returns a normalized non-negative topic mixture. Returns nil for empty
// input or when the projection has no mass.
func (t *TopicModel) Distribution(vec []float64) []float64 {
	if t == nil || len(vec) == 0 {
		return nil
	}
	dist := make([]float64, len(t.centroids))
	var total float64
	for i, cen := range t.centroids {
		sim := cosine(vec, cen)
		if sim < 0 {
			sim = 0
		}
		dist[i] = sim
		total += sim
	}
	if total == 0 {
		return nil
	}
	for i := range dist {
		dist[i] /= total
	}
	return dist
}
