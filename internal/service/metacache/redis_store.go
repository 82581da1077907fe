package metacache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached metadata across replicas via Redis. Payloads are
// stored as JSON with the cache TTL applied server-side, so expiry needs no
// local bookkeeping. Redis failures degrade to cache misses.
type RedisStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisStore builds a Redis-backed store. ttl <= 0 means entries never expire.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, keyPrefix: "courseinfo:"}
}

// Get returns the cached payload when present.
func (s *RedisStore) Get(ctx context.Context, courseID string) (map[string]any, bool) {
	raw, err := s.rdb.Get(ctx, s.keyPrefix+courseID).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("metadata cache redis get failed",
				slog.String("course_id", courseID),
				slog.Any("error", err))
		}
		return nil, false
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		slog.Warn("metadata cache redis payload malformed",
			slog.String("course_id", courseID),
			slog.Any("error", err))
		return nil, false
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, true
}

// Set stores the payload with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, courseID string, meta map[string]any) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, s.keyPrefix+courseID, raw, s.ttl).Err(); err != nil {
		slog.Warn("metadata cache redis set failed",
			slog.String("course_id", courseID),
			slog.Any("error", err))
	}
}
