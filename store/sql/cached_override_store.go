package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-searchcore/core"
)

const overrideCacheKeyPrefix = "searchcore::override::v1"

type namedOverrideStore interface {
	core.OverrideStore
	Name() string
}

// CachedOverrideStore serves override reads from a cache service and drops
// the cached entry on every write.
type CachedOverrideStore struct {
	base  core.OverrideStore
	name  string
	cache repositorycache.CacheService
}

// cachedOverride also records absence so an empty store is not re-queried
// on every resolution.
type cachedOverride struct {
	Present  bool
	Override core.OverrideConfig
}

func NewCachedOverrideStore(
	base core.OverrideStore,
	cacheService repositorycache.CacheService,
) (*CachedOverrideStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base override store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: override cache service is required")
	}
	name := DefaultOverrideName
	if named, ok := base.(namedOverrideStore); ok && strings.TrimSpace(named.Name()) != "" {
		name = named.Name()
	}
	return &CachedOverrideStore{base: base, name: name, cache: cacheService}, nil
}

// OverrideCacheKey returns searchcore::override::v1::<name> with the name
// URL-path escaped.
func OverrideCacheKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultOverrideName
	}
	return overrideCacheKeyPrefix + "::" + url.PathEscape(name)
}

func (s *CachedOverrideStore) Override(ctx context.Context) (*core.OverrideConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached override store is not configured")
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, OverrideCacheKey(s.name), func(ctx context.Context) (cachedOverride, error) {
		fetched, fetchErr := s.base.Override(ctx)
		if fetchErr != nil {
			return cachedOverride{}, fetchErr
		}
		if fetched == nil {
			return cachedOverride{}, nil
		}
		return cachedOverride{Present: true, Override: fetched.Clone()}, nil
	})
	if err != nil {
		return nil, err
	}
	if !cached.Present {
		return nil, nil
	}
	override := cached.Override.Clone()
	return &override, nil
}

func (s *CachedOverrideStore) SetOverride(ctx context.Context, override core.OverrideConfig) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached override store is not configured")
	}
	if err := s.base.SetOverride(ctx, override); err != nil {
		return err
	}
	return s.cache.Delete(ctx, OverrideCacheKey(s.name))
}

func (s *CachedOverrideStore) ClearOverride(ctx context.Context) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached override store is not configured")
	}
	if err := s.base.ClearOverride(ctx); err != nil {
		return err
	}
	return s.cache.Delete(ctx, OverrideCacheKey(s.name))
}
