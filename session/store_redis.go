package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisStore persists the encoded session under a single Redis key.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store writing to "<prefix>:jwt-auth-storage".
// A ttl of zero stores the key without expiry.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key() string {
	if s.prefix == "" {
		return DefaultKey
	}
	return s.prefix + ":" + DefaultKey
}

// Save implements [Store].
//
//	Performance: 1 Redis SET.
func (s *RedisStore) Save(ctx context.Context, st State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load implements [Store]. Entries written by an older schema version are
// rewritten in the current version, keeping their remaining TTL.
//
//	Performance: 1 Redis GET, plus PTTL and SET when migrating.
func (s *RedisStore) Load(ctx context.Context) (State, bool, error) {
	key := s.key()

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	st, err := Decode(data)
	if err != nil {
		return State{}, false, err
	}

	if err := s.maybeMigrateSchema(ctx, key, st); err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

// Clear implements [Store].
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *RedisStore) maybeMigrateSchema(ctx context.Context, key string, st State) error {
	if st.SchemaVersion == CurrentSchemaVersion {
		return nil
	}

	pttl, err := s.redis.PTTL(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	switch {
	case pttl == -2, pttl == 0:
		// Key vanished or is about to.
		return nil
	case pttl < 0:
		// No expiry.
		pttl = 0
	}

	encoded, err := Encode(st)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, encoded, pttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
