package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-searchcore/core"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "searchcore:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces keys in a shared Redis database.
	Prefix string
}

// Redis shares directory snapshots across worker processes. The entry is
// stored as JSON and Redis expiry is aligned with ExpireAt.
type Redis struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("cache: redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.Prefix), nil
}

func NewRedisWithClient(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Redis) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.CacheEntry{}, false, nil
	}
	if err != nil {
		return core.CacheEntry{}, false, fmt.Errorf("cache: redis get %q: %w", key, err)
	}
	var entry core.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return core.CacheEntry{}, false, fmt.Errorf("cache: decode redis entry %q: %w", key, err)
	}
	if entry.Expired(r.now()) {
		return core.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, entry core.CacheEntry) error {
	ttl := entry.ExpireAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: encode redis entry %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %q: %w", key, err)
	}
	return nil
}

var _ core.Cache = (*Redis)(nil)
