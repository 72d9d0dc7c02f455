package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachdesk/training-app/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// redisStore implements Store on a Redis backend. Drafts are TTL-bounded so
// abandoned sessions age out on their own.
type redisStore struct {
	rdb       *goredis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore pings the given client and returns a Redis-backed draft
// store. All keys live under keyPrefix.
func NewRedisStore(rdb *goredis.Client, keyPrefix string, ttl time.Duration) (Store, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = "draft"
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{rdb: rdb, keyPrefix: keyPrefix, ttl: ttl}, nil
}

func (s *redisStore) fullKey(key string) string {
	return s.keyPrefix + ":" + key
}

func (s *redisStore) Save(ctx context.Context, key string, d *domain.RoutineDraft) error {
	raw, err := encodeDraft(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.fullKey(key), raw, s.ttl).Err()
}

func (s *redisStore) Load(ctx context.Context, key string) (*domain.RoutineDraft, error) {
	raw, err := s.rdb.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d, err := decodeDraft(raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Stale schema version: drop the document so the next load
			// doesn't pay for the decode again.
			_ = s.rdb.Del(ctx, s.fullKey(key)).Err()
		}
		return nil, err
	}
	return d, nil
}

func (s *redisStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.fullKey(key)).Err()
}
