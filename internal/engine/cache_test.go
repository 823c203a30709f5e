package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Alexsovich5/DAPP-sub000/internal/embedding"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type mockStore struct {
	embeddings map[string]*embedding.ProfileEmbedding
	getErr     error
	putErr     error
	gets, puts int
}

func newMockStore() *mockStore {
	return &mockStore{embeddings: make(map[string]*embedding.ProfileEmbedding)}
}

func (s *mockStore) GetEmbedding(userID string, version int) (*embedding.ProfileEmbedding, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	e, ok := s.embeddings[cacheKey(userID, version)]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (s *mockStore) PutEmbedding(e *embedding.ProfileEmbedding) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.embeddings[cacheKey(e.UserID, e.Version)] = e
	return nil
}

func TestEmbeddingCache_MemoizesPerVersion(t *testing.T) {
	cache := NewEmbeddingCache(nil)
	p := &profile.UserProfile{ID: "u1", Version: 1, Interests: []string{"hiking"}}

	first := cache.Get(p)
	second := cache.Get(p)
	if first != second {
		t.Error("expected the memoized embedding pointer on repeat Get")
	}

	p.Version = 2
	third := cache.Get(p)
	if third == first {
		t.Error("version bump must regenerate, not reuse the old embedding")
	}
	if third.Version != 2 {
		t.Errorf("regenerated embedding version = %d, want 2", third.Version)
	}
}

func TestEmbeddingCache_StalenessRegenerates(t *testing.T) {
	// Generated embeddings carry real wall-clock timestamps, so the fake
	// clock starts at now and only the advancement is simulated.
	clock := &fakeClock{now: time.Now().UTC()}
	cache := NewEmbeddingCacheWithClock(nil, clock, 7*24*time.Hour)
	p := &profile.UserProfile{ID: "u1", Version: 1, Interests: []string{"hiking"}}

	first := cache.Get(p)

	clock.advance(6 * 24 * time.Hour)
	if got := cache.Get(p); got != first {
		t.Error("embedding regenerated before the staleness interval elapsed")
	}

	clock.advance(2 * 24 * time.Hour)
	stale := cache.Get(p)
	if stale == first {
		t.Error("stale embedding was served past the staleness interval")
	}
	// Regeneration is deterministic, so the vectors themselves match.
	if diff := cmp.Diff(first.Interests, stale.Interests); diff != "" {
		t.Errorf("regenerated vector mismatch (-old +new):\n%s", diff)
	}
}

func TestEmbeddingCache_StoreRoundTrip(t *testing.T) {
	store := newMockStore()
	cache := NewEmbeddingCache(store)
	p := &profile.UserProfile{ID: "u1", Version: 3, Interests: []string{"hiking"}}

	cache.Get(p)
	if store.puts != 1 {
		t.Fatalf("store puts = %d, want 1", store.puts)
	}

	// A fresh cache with the same store should hit persistence, not regenerate.
	warm := NewEmbeddingCache(store)
	got := warm.Get(p)
	if store.gets == 0 {
		t.Error("expected a store read on cold memory cache")
	}
	if got.UserID != "u1" || got.Version != 3 {
		t.Errorf("stored embedding identity = (%s, %d), want (u1, 3)", got.UserID, got.Version)
	}
	if store.puts != 1 {
		t.Errorf("store puts = %d after warm read, want 1 (no rewrite)", store.puts)
	}
}

func TestEmbeddingCache_StoreFailuresAreNonFatal(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("database locked")
	store.putErr = errors.New("database locked")
	cache := NewEmbeddingCache(store)
	p := &profile.UserProfile{ID: "u1", Version: 1}

	if got := cache.Get(p); got == nil {
		t.Fatal("Get must generate despite persistence failures")
	}
}
