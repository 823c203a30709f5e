package corpus

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

func trainingCorpus(n int) []*profile.UserProfile {
	themes := []string{
		"hiking mountain trails and camping under the stars every weekend",
		"reading philosophy and writing essays about meaning and purpose",
		"cooking vegetarian food and hosting dinner parties for friends",
		"playing jazz piano and going to live music shows downtown",
		"training for marathons and caring about health and fitness",
	}
	profiles := make([]*profile.UserProfile, n)
	for i := range profiles {
		theme := themes[i%len(themes)]
		profiles[i] = &profile.UserProfile{
			ID:         fmt.Sprintf("u%d", i),
			Philosophy: theme + " brings me alive",
			Responses: map[string]string{
				"weekend": theme,
			},
		}
	}
	return profiles
}

func TestSimilarity_UntrainedFallsBackToJaccard(t *testing.T) {
	m := NewManager()
	if m.Trained() {
		t.Fatal("new manager reports trained")
	}

	// {a b c} vs {b c d}: 2 shared of 4 total.
	got := m.Similarity("alpha beta gamma", "beta gamma delta")
	want := 2.0 / 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %v, want jaccard %v", got, want)
	}
}

func TestSimilarity_EmptyTextIsZero(t *testing.T) {
	m := NewManager()
	cases := [][2]string{{"", ""}, {"hello world", ""}, {"", "hello world"}}
	for _, c := range cases {
		if got := m.Similarity(c[0], c[1]); got != 0 {
			t.Errorf("Similarity(%q, %q) = %v, want 0", c[0], c[1], got)
		}
	}

	// Still zero after training.
	m.Train(context.Background(), trainingCorpus(20))
	if got := m.Similarity("", ""); got != 0 {
		t.Errorf("trained Similarity(empty, empty) = %v, want 0", got)
	}
}

func TestTrain_SmallCorpusIsInsufficientButTrained(t *testing.T) {
	m := NewManager()
	m.Train(context.Background(), trainingCorpus(3))

	if !m.Trained() {
		t.Fatal("manager not trained after Train")
	}
	snap := m.Snapshot()
	if !snap.Insufficient {
		t.Error("3-profile corpus not marked insufficient")
	}

	// Fallback path: identical texts have jaccard 1.
	if got := m.Similarity("hiking and camping", "hiking and camping"); math.Abs(got-1) > 1e-9 {
		t.Errorf("fallback Similarity(identical) = %v, want 1", got)
	}
}

func TestTrain_ProfilesWithoutTextDontCount(t *testing.T) {
	profiles := trainingCorpus(5)
	for i := 0; i < 10; i++ {
		profiles = append(profiles, &profile.UserProfile{ID: fmt.Sprintf("blank%d", i)})
	}

	m := NewManager()
	m.Train(context.Background(), profiles)
	snap := m.Snapshot()
	if snap.UsableDocs != 5 {
		t.Errorf("UsableDocs = %d, want 5", snap.UsableDocs)
	}
	if !snap.Insufficient {
		t.Error("corpus with 5 usable docs not marked insufficient")
	}
}

func TestSimilarity_TrainedModelRanksRelatedTextHigher(t *testing.T) {
	m := NewManager()
	m.Train(context.Background(), trainingCorpus(25))

	snap := m.Snapshot()
	if snap.Insufficient {
		t.Fatal("25-profile corpus marked insufficient")
	}

	hikingA := "hiking mountain trails and camping on the weekend"
	hikingB := "camping under the stars after hiking mountain trails"
	music := "playing jazz piano at live music shows"

	related := m.Similarity(hikingA, hikingB)
	unrelated := m.Similarity(hikingA, music)
	if related <= unrelated {
		t.Errorf("related pair scored %v, unrelated %v; want related higher", related, unrelated)
	}
	if related < 0 || related > 1 || unrelated < 0 || unrelated > 1 {
		t.Errorf("similarity out of [0,1]: %v, %v", related, unrelated)
	}
}

func TestSimilarity_Deterministic(t *testing.T) {
	textA := "hiking mountain trails and cooking vegetarian food"
	textB := "reading philosophy while training for marathons"

	score := func() float64 {
		m := NewManager()
		m.Train(context.Background(), trainingCorpus(25))
		return m.Similarity(textA, textB)
	}

	first := score()
	for i := 0; i < 3; i++ {
		if got := score(); got != first {
			t.Fatalf("similarity not deterministic across retrains: %v vs %v", got, first)
		}
	}
}

func TestTrain_ConcurrentCallsCoalesce(t *testing.T) {
	m := NewManager()
	corpus := trainingCorpus(25)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Train(context.Background(), corpus)
		}()
	}
	// Readers during training must never see a partial model.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Similarity("hiking trails", "camping stars")
			}
		}()
	}
	wg.Wait()

	if !m.Trained() {
		t.Fatal("manager untrained after concurrent Train calls")
	}
}

func TestTrain_CancelledContextLeavesStateUnchanged(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Train(ctx, trainingCorpus(25))
	if m.Trained() {
		t.Error("cancelled Train still published a model")
	}
}

func TestFitVectorizer_FrequencyFilters(t *testing.T) {
	// "common" appears everywhere (filtered by max df), "rare" appears
	// once (filtered by min df), "shared" appears in a few docs (kept).
	docs := []string{
		"common shared apple", "common shared banana", "common shared cherry",
		"common plum", "common grape", "common rare",
		"common fig", "common date", "common kiwi", "common mango",
	}
	v := fitVectorizer(docs)
	if v == nil {
		t.Fatal("vectorizer is nil")
	}
	if _, ok := v.vocab["common"]; ok {
		t.Error("term present in every document survived the max-df filter")
	}
	if _, ok := v.vocab["rare"]; ok {
		t.Error("single-occurrence term survived the min-df filter")
	}
	if _, ok := v.vocab["shared"]; !ok {
		t.Error("mid-frequency term was filtered out")
	}
}

func TestTransform_UnitNorm(t *testing.T) {
	docs := make([]string, 12)
	for i := range docs {
		if i%2 == 0 {
			docs[i] = fmt.Sprintf("travel food music extra%d", i)
		} else {
			docs[i] = fmt.Sprintf("books cinema art extra%d", i)
		}
	}
	v := fitVectorizer(docs)
	if v == nil {
		t.Fatal("vectorizer is nil")
	}
	vec := v.Transform("travel food music")
	if vec == nil {
		t.Fatal("transform returned nil for in-vocabulary text")
	}
	var sumSq float64
	for _, x := range vec {
		sumSq += x * x
	}
	if math.Abs(sumSq-1) > 1e-9 {
		t.Errorf("transform vector norm² = %v, want 1", sumSq)
	}

	if v.Transform("") != nil {
		t.Error("transform of empty text should be nil")
	}
	if v.Transform("zzz qqq outside vocabulary") != nil {
		t.Error("transform with no vocabulary hits should be nil")
	}
}

func TestTopicDistribution_NormalizedAndDeterministic(t *testing.T) {
	docs := make([]string, 30)
	for i := range docs {
		docs[i] = fmt.Sprintf("theme%d words about theme%d things and stuff", i%5, i%5)
	}
	v := fitVectorizer(docs)
	vecs := make([][]float64, len(docs))
	for i, d := range docs {
		vecs[i] = v.Transform(d)
	}

	tm := fitTopics(vecs)
	if tm == nil {
		t.Fatal("topic model is nil for 30-doc corpus")
	}

	dist := tm.Distribution(vecs[0])
	if dist == nil {
		t.Fatal("distribution is nil")
	}
	var total float64
	for _, p := range dist {
		if p < 0 {
			t.Errorf("negative topic weight %v", p)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("topic distribution sums to %v, want 1", total)
	}

	tm2 := fitTopics(vecs)
	dist2 := tm2.Distribution(vecs[0])
	for i := range dist {
		if dist[i] != dist2[i] {
			t.Fatalf("topic fit not deterministic at component %d: %v vs %v", i, dist[i], dist2[i])
		}
	}
}

func TestCosine_EdgeCases(t *testing.T) {
	if got := cosine(nil, nil); got != 0 {
		t.Errorf("cosine(nil, nil) = %v, want 0", got)
	}
	if got := cosine([]float64{1, 0}, []float64{1, 0, 0}); got != 0 {
		t.Errorf("cosine with mismatched lengths = %v, want 0", got)
	}
	if got := cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", got)
	}
	if got := cosine([]float64{1, 2}, []float64{1, 2}); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine(v, v) = %v, want 1", got)
	}
}
