package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alexsovich5/DAPP-sub000/internal/embedding"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// embeddingTTL is the staleness interval: a cached embedding older than
// this is regenerated even when the profile version is unchanged, so
// generator improvements roll out without a version bump.
const embeddingTTL = 7 * 24 * time.Hour

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// EmbeddingStore is the persistence the cache needs; implemented by
// storage.Store. A nil store means memory-only caching.
type EmbeddingStore interface {
	GetEmbedding(userID string, version int) (*embedding.ProfileEmbedding, error)
	PutEmbedding(e *embedding.ProfileEmbedding) error
}

// EmbeddingCache hands out profile embeddings keyed by (user id, profile
// version), regenerating on version change or staleness. Embeddings are
// owned by the engine; callers never mutate what Get returns.
type EmbeddingCache struct {
	store  EmbeddingStore
	clock  Clock
	ttl    time.Duration
	logger *slog.Logger

	mu  sync.RWMutex
	mem map[string]*embedding.ProfileEmbedding
}

// NewEmbeddingCache creates a cache with the 7-day staleness interval.
// store may be nil.
func NewEmbeddingCache(store EmbeddingStore) *EmbeddingCache {
	return NewEmbeddingCacheWithClock(store, realClock{}, embeddingTTL)
}

// NewEmbeddingCacheWithClock creates a cache with a custom clock and TTL
// (for testing).
func NewEmbeddingCacheWithClock(store EmbeddingStore, clock Clock, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{
		store:  store,
		clock:  clock,
		ttl:    ttl,
		logger: slog.Default(),
		mem:    make(map[string]*embedding.ProfileEmbedding),
	}
}

func cacheKey(userID string, version int) string {
	return fmt.Sprintf("%s:%d", userID, version)
}

// Get returns the embedding for a profile, from memory, then the store,
// regenerating when missing or stale. It never fails: persistence errors
// are logged and generation proceeds.
func (c *EmbeddingCache) Get(p *profile.UserProfile) *embedding.ProfileEmbedding {
	key := cacheKey(p.ID, p.Version)
	now := c.clock.Now()

	c.mu.RLock()
	cached, ok := c.mem[key]
	c.mu.RUnlock()
	if ok && c.fresh(cached, now) {
		return cached
	}

	if c.store != nil {
		stored, err := c.store.GetEmbedding(p.ID, p.Version)
		if err == nil && c.fresh(stored, now) {
			c.memoize(key, stored)
			return stored
		}
		if err != nil {
			c.logger.Debug("embedding cache read miss", "user", p.ID, "version", p.Version, "error", err)
		}
	}

	generated := embedding.Generate(p)
	c.memoize(key, generated)
	if c.store != nil {
		if err := c.store.PutEmbedding(generated); err != nil {
			c.logger.Warn("persisting embedding failed", "user", p.ID, "version", p.Version, "error", err)
		}
	}
	return generated
}

func (c *EmbeddingCache) fresh(e *embedding.ProfileEmbedding, now time.Time) bool {
	return e != nil && now.Before(e.GeneratedAt.Add(c.ttl))
}

func (c *EmbeddingCache) memoize(key string, e *embedding.ProfileEmbedding) {
	c.mu.Lock()
	c.mem[key] = e
	c.mu.Unlock()
}
