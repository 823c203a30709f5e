// Package corpus owns the statistics fit across many profiles (a TF-IDF
// term-weight model and a light topic model) and the semantic similarity
// scorer built on them. A Manager starts untrained; once trained it always
// stays usable, degrading to keyword overlap when the fitted vocabulary is
// too thin to trust.
package corpus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// minUsableProfiles is the smallest corpus that yields meaningful document
// frequencies. Below it the manager still transitions to trained, but marks
// the model insufficient so scoring silently uses the keyword fallback.
const minUsableProfiles = 10

// topicBlendWeight is how much of the semantic similarity comes from the
// topic distribution when a topic model is available; the rest is raw
// term-space cosine.
const topicBlendWeight = 0.15

// Model is an immutable snapshot of fitted corpus statistics. Readers hold
// a pointer to one snapshot for the duration of a scoring call; retraining
// publishes a full replacement rather than mutating in place.
type Model struct {
	vectorizer *Vectorizer
	topics     *TopicModel

	// DocCount is the corpus size the model was fit on; UsableDocs is how
	// many of those had any textual content.
	DocCount   int
	UsableDocs int

	// Insufficient marks a model fit on too small a corpus. Scoring falls
	// back to keyword overlap but the manager still reports trained.
	Insufficient bool

	TrainedAt time.Time
}

// usable reports whether the model can project texts into the term space.
func (m *Model) usable() bool {
	return m != nil && !m.Insufficient && m.vectorizer.VocabSize() > 0
}

// Manager holds the current corpus model and serializes retraining.
// Scoring reads are lock-cheap: they grab the current snapshot pointer and
// never observe a half-built model.
type Manager struct {
	mu    sync.RWMutex
	model *Model // nil until first Train

	// training coalesces concurrent Train calls into one fit; late callers
	// wait for the in-flight result instead of racing.
	training singleflight.Group

	logger *slog.Logger
}

// NewManager returns an untrained Manager.
func NewManager() *Manager {
	return &Manager{logger: slog.Default()}
}

// Trained reports whether a model has been published, even an insufficient
// one.
func (m *Manager) Trained() bool {
	return m.current() != nil
}

// Snapshot returns the current model, or nil when untrained.
func (m *Manager) Snapshot() *Model {
	return m.current()
}

func (m *Manager) current() *Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model
}

func (m *Manager) publish(model *Model) {
	m.mu.Lock()
	m.model = model
	m.mu.Unlock()
}

// Train fits term weighting and topics over the given profiles and
// publishes the result atomically. It never fails the caller: an
// undersized corpus or an internal panic both leave the manager trained
// with fallback behavior, logged rather than raised. Concurrent calls are
// coalesced so only one fit runs at a time and everyone observes its
// outcome.
func (m *Manager) Train(ctx context.Context, profiles []*profile.UserProfile) {
	if ctx.Err() != nil {
		m.logger.Warn("corpus training skipped, context done", "error", ctx.Err())
		return
	}
	m.training.Do("train", func() (any, error) {
		m.publish(m.fit(profiles))
		return nil, nil
	})
}

// fit builds a Model snapshot. Panics inside the numeric code are
// converted into an insufficient model so scoring keeps working.
func (m *Manager) fit(profiles []*profile.UserProfile) (model *Model) {
	now := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("corpus training failed, using keyword fallback", "panic", r)
			model = &Model{DocCount: len(profiles), Insufficient: true, TrainedAt: now}
		}
	}()

	docs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if text := profile.Combine(p); text != "" {
			docs = append(docs, text)
		}
	}

	if len(docs) < minUsableProfiles {
		m.logger.Info("corpus too small, similarity will use keyword overlap",
			"profiles", len(profiles), "usable", len(docs), "min", minUsableProfiles)
		return &Model{
			DocCount:     len(profiles),
			UsableDocs:   len(docs),
			Insufficient: true,
			TrainedAt:    now,
		}
	}

	vec := fitVectorizer(docs)
	if vec == nil {
		m.logger.Warn("vocabulary empty after frequency filtering, using keyword fallback",
			"usable", len(docs))
		return &Model{
			DocCount:     len(profiles),
			UsableDocs:   len(docs),
			Insufficient: true,
			TrainedAt:    now,
		}
	}

	docVecs := make([][]float64, len(docs))
	for i, d := range docs {
		docVecs[i] = vec.Transform(d)
	}
	topics := fitTopics(docVecs)

	m.logger.Info("corpus model trained",
		"profiles", len(profiles),
		"usable", len(docs),
		"vocabulary", vec.VocabSize(),
		"topics", topics != nil)

	return &Model{
		vectorizer: vec,
		topics:     topics,
		DocCount:   len(profiles),
		UsableDocs: len(docs),
		TrainedAt:  now,
	}
}

// Similarity scores two normalized text blobs in [0,1]. With a usable
// model both texts are projected into the term space and compared by
// cosine, blended with their topic distributions when topics were fit.
// Untrained or insufficient models fall back to Jaccard word overlap.
// Empty input scores 0, and any internal numeric failure is caught and
// scored 0 rather than surfaced.
func (m *Manager) Similarity(textA, textB string) (sim float64) {
	if textA == "" || textB == "" {
		return 0
	}
	model := m.current()
	if !model.usable() {
		return jaccard(textA, textB)
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("similarity transform failed", "panic", r)
			sim = 0
		}
	}()

	vecA := model.vectorizer.Transform(textA)
	vecB := model.vectorizer.Transform(textB)
	if vecA == nil && vecB == nil {
		// Neither text touches the fitted vocabulary; term-space cosine
		// would report 0 for texts that may still overlap word-for-word.
		return jaccard(textA, textB)
	}

	sim = cosine(vecA, vecB)
	if distA, distB := model.topics.Distribution(vecA), model.topics.Distribution(vecB); distA != nil && distB != nil {
		sim = (1-topicBlendWeight)*sim + topicBlendWeight*cosine(distA, distB)
	}
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}
