package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-searchcore/core"
)

var errRepositoryMiss = errors.New("cache: repository miss")

// Repository adapts a go-repository-cache service. Reads go through
// GetOrFetch with a fetch that always misses, so a lookup never populates
// the cache on its own; writes replace the stored snapshot.
type Repository struct {
	service repositorycache.CacheService
	now     func() time.Time
}

func NewRepository(service repositorycache.CacheService) (*Repository, error) {
	if service == nil {
		return nil, fmt.Errorf("cache: repository cache service is required")
	}
	return &Repository{
		service: service,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// NewRepositoryWithTTL builds the backing cache service with the given
// retention. It should not be shorter than the directory TTL.
func NewRepositoryWithTTL(ttl time.Duration) (*Repository, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("cache: new repository cache service: %w", err)
	}
	return NewRepository(service)
}

func (r *Repository) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	entry, ok, err := r.lookup(ctx, key)
	if err != nil || !ok {
		return core.CacheEntry{}, false, err
	}
	if entry.Expired(r.now()) {
		return core.CacheEntry{}, false, nil
	}
	return cloneEntry(entry), true, nil
}

func (r *Repository) Set(ctx context.Context, key string, entry core.CacheEntry) error {
	// an expired snapshot still occupies the key
	if _, present, err := r.lookup(ctx, key); err != nil {
		return err
	} else if present {
		if err := r.service.Delete(ctx, key); err != nil {
			return fmt.Errorf("cache: evict %q: %w", key, err)
		}
	}
	stored := cloneEntry(entry)
	_, err := repositorycache.GetOrFetch(ctx, r.service, key, func(context.Context) (core.CacheEntry, error) {
		return stored, nil
	})
	return err
}

func (r *Repository) lookup(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	entry, err := repositorycache.GetOrFetch(ctx, r.service, key, func(context.Context) (core.CacheEntry, error) {
		return core.CacheEntry{}, errRepositoryMiss
	})
	if errors.Is(err, errRepositoryMiss) {
		return core.CacheEntry{}, false, nil
	}
	if err != nil {
		return core.CacheEntry{}, false, err
	}
	return entry, true, nil
}

var _ core.Cache = (*Repository)(nil)
