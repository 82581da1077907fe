// Package metacache memoizes course metadata lookups.
//
// The cache is fail-soft: any lookup failure is absorbed into an empty map
// so that enrichment never blocks a recommendation. Entries carry a TTL and
// the in-memory store is bounded, so the cache cannot grow without limit
// over the life of the process.
package metacache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/domain"
)

// Store is the backing storage for cached metadata payloads.
type Store interface {
	Get(ctx context.Context, courseID string) (map[string]any, bool)
	Set(ctx context.Context, courseID string, meta map[string]any)
}

// Cache implements domain.CourseInfoFetcher by memoizing an underlying
// fetcher. Concurrent lookups for the same uncached id may both reach the
// source; the lookup is idempotent and cheap enough that a per-key
// single-flight join is not worth its complexity. Failed lookups are cached
// as empty maps so a flaky source is not hammered per course.
type Cache struct {
	src   domain.CourseInfoFetcher
	store Store
}

// New wraps src with the given store.
func New(src domain.CourseInfoFetcher, store Store) *Cache {
	return &Cache{src: src, store: store}
}

// FetchCourseInfo returns cached metadata for courseID, fetching and storing
// it on a miss. It never returns an error: failures degrade to an empty map.
func (c *Cache) FetchCourseInfo(ctx context.Context, courseID string) (map[string]any, error) {
	if courseID == "" {
		return map[string]any{}, nil
	}
	if meta, ok := c.store.Get(ctx, courseID); ok {
		observability.ObserveMetaCacheLookup(true)
		return meta, nil
	}
	observability.ObserveMetaCacheLookup(false)

	meta, err := c.src.FetchCourseInfo(ctx, courseID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("course info fetch failed",
			slog.String("course_id", courseID),
			slog.Any("error", err))
		meta = map[string]any{}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	c.store.Set(ctx, courseID, meta)
	return meta, nil
}

// memoryEntry is one cached payload with its write time.
type memoryEntry struct {
	meta map[string]any
	at   time.Time
}

// MemoryStore is a mutex-guarded in-memory store with TTL expiry and a
// max-entries bound (FIFO eviction). Critical sections are map get/set only.
type MemoryStore struct {
	mu         sync.Mutex
	m          map[string]memoryEntry
	ord        []string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryStore builds an in-memory store. maxEntries <= 0 means 4096;
// ttl <= 0 disables expiry.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &MemoryStore{
		m:          make(map[string]memoryEntry),
		ord:        make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached payload when present and unexpired.
func (s *MemoryStore) Get(_ context.Context, courseID string) (map[string]any, bool) {
	s.mu.Lock()
	e, ok := s.m[courseID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.at) > s.ttl {
		s.mu.Lock()
		delete(s.m, courseID)
		s.mu.Unlock()
		return nil, false
	}
	return e.meta, true
}

// Set stores the payload, evicting the oldest entry when full.
func (s *MemoryStore) Set(_ context.Context, courseID string, meta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[courseID]; !exists {
		if len(s.ord) >= s.maxEntries {
			old := s.ord[0]
			s.ord = s.ord[1:]
			delete(s.m, old)
		}
		s.ord = append(s.ord, courseID)
	}
	s.m[courseID] = memoryEntry{meta: meta, at: s.now()}
}
