package goAuthClient

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goAuthClient/session"
)

// OpenStore builds the persistence sink selected by cfg. The returned close
// function releases any connection the store holds and is never nil.
//
// A Redis store is pinged before it is returned.
func OpenStore(ctx context.Context, cfg PersistenceConfig) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case BackendMemory, "":
		return session.NewMemoryStore(), noop, nil

	case BackendFile:
		path := cfg.Path
		if path == "" {
			p, err := session.DefaultFilePath()
			if err != nil {
				return nil, noop, err
			}
			path = p
		}
		return session.NewFileStore(path), noop, nil

	case BackendSQLite:
		store, err := session.OpenSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	case BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: redis url: %v", ErrInvalidConfig, err)
		}
		client := redis.NewClient(opts)
		store := session.NewRedisStore(client, cfg.RedisPrefix, cfg.RedisTTL)
		if _, err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, client.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: unsupported Persistence Backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
