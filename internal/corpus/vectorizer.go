package corpus

import (
	"math"
	"sort"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

const (
	// maxVocabulary caps the term-weight space so transform vectors stay
	// small enough for brute-force cosine at request time.
	maxVocabulary = 1000

	// minDocFreq excludes terms seen in fewer documents (typos, names).
	minDocFreq = 2

	// maxDocFreqRatio excludes terms present in most documents; they carry
	// no discriminating signal between profiles.
	maxDocFreqRatio = 0.8
)

// Vectorizer projects normalized profile text into a fixed TF-IDF weighted
// term space fit over a corpus. It is immutable once built; a retrain
// produces a new Vectorizer rather than mutating this one.
type Vectorizer struct {
	vocab map[string]int // term → column index
	idf   []float64      // per-column inverse document frequency
	terms []string       // column index → term, for debugging
}

// fitVectorizer builds a Vectorizer from normalized documents. Returns nil
// when nothing survives the frequency filters (vocabulary too thin to be
// useful); callers fall back to keyword overlap in that case.
func fitVectorizer(docs []string) *Vectorizer {
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range ngramTerms(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	n := len(docs)
	maxDF := int(math.Ceil(maxDocFreqRatio * float64(n)))

	type termFreq struct {
		term string
		df   int
	}
	kept := make([]termFreq, 0, len(docFreq))
	for term, df := range docFreq {
		if df < minDocFreq || df > maxDF {
			continue
		}
		kept = append(kept, termFreq{term, df})
	}
	if len(kept) == 0 {
		return nil
	}

	// Most-frequent terms first; alphabetical tie-break keeps fits
	// reproducible for identical corpora.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].df != kept[j].df {
			return kept[i].df > kept[j].df
		}
		return kept[i].term < kept[j].term
	})
	if len(kept) > maxVocabulary {
		kept = kept[:maxVocabulary]
	}

	v := &Vectorizer{
		vocab: make(map[string]int, len(kept)),
		idf:   make([]float64, len(kept)),
		terms: make([]string, len(kept)),
	}
	for i, tf := range kept {
		v.vocab[tf.term] = i
		v.terms[i] = tf.term
		// Smoothed IDF: log(1 + N/(1+df)) never goes negative and never
		// divides by zero.
		v.idf[i] = math.Log(1 + float64(n)/(1+float64(tf.df)))
	}
	return v
}

// VocabSize returns the number of terms in the fitted vocabulary.
func (v *Vectorizer) VocabSize() int {
	if v == nil {
		return 0
	}
	return len(v.vocab)
}

// Transform maps normalized text into the fitted term space as an
// L2-normalized TF-IDF vector. Returns nil when no token from the text is
// in the vocabulary.
func (v *Vectorizer) Transform(text string) []float64 {
	if v == nil {
		return nil
	}
	terms := ngramTerms(text)
	if len(terms) == 0 {
		return nil
	}

	counts := make(map[int]float64)
	for _, term := range terms {
		if col, ok := v.vocab[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	vec := make([]float64, len(v.vocab))
	total := float64(len(terms))
	for col, c := range counts {
		vec[col] = (c / total) * v.idf[col]
	}
	// Accumulate in column order, not map order: float addition is not
	// associative, so a map-ordered sum varies at the last bit between
	// calls and breaks the determinism the fit guarantees.
	var sumSq float64
	for _, w := range vec {
		sumSq += w * w
	}
	if sumSq == 0 {
		return nil
	}
	norm := math.Sqrt(sumSq)
	for col := range counts {
		vec[col] /= norm
	}
	return vec
}

// ngramTerms produces unigrams and bigrams from normalized text.
func ngramTerms(text string) []string {
	words := profile.Tokens(text)
	if len(words) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(words))
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// cosine returns the cosine similarity of two dense vectors, 0 when either
// is empty, zero-magnitude, or the lengths differ.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
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
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// jaccard returns |A∩B| / |A∪B| over whitespace-tokenized word sets, 0
// when either text is empty.
func jaccard(textA, textB string) float64 {
	setA := profile.TokenSet(textA)
	setB := profile.TokenSet(textB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
