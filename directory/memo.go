package directory

import (
	"context"
	"time"

	"github.com/goliatone/go-searchcore/core"
)

// fetchSpec describes one cache-or-fetch resource. Empty values are
// returned but never stored, so the next call retries.
type fetchSpec[T any] struct {
	Resource string
	Key      string
	TTL      time.Duration
	Fetch    func(ctx context.Context) (T, error)
	Empty    func(T) bool
	Encode   func(T) ([]byte, error)
	Decode   func([]byte) (T, error)
}

type fetchResult[T any] struct {
	Value  T
	Cached bool
}

// memoize returns a live cache entry verbatim or runs the fetch and stores a
// non-empty result. Cache read or write problems degrade to a fetch or an
// unstored result; only fetch failures are returned.
func memoize[T any](ctx context.Context, c *Client, spec fetchSpec[T], readCache bool) (fetchResult[T], error) {
	if readCache {
		if value, ok := cachedValue(ctx, c, spec); ok {
			c.recordCounter(ctx, metricCacheHit, spec.Resource)
			return fetchResult[T]{Value: value, Cached: true}, nil
		}
		c.recordCounter(ctx, metricCacheMiss, spec.Resource)
	}

	value, err := spec.Fetch(ctx)
	if err != nil {
		var zero T
		return fetchResult[T]{Value: zero}, err
	}
	if spec.Empty(value) {
		return fetchResult[T]{Value: value}, nil
	}

	data, err := spec.Encode(value)
	if err != nil {
		c.logWarn(ctx, "directory cache encode failed", map[string]any{"resource": spec.Resource, "error": err.Error()})
		return fetchResult[T]{Value: value}, nil
	}
	entry := core.CacheEntry{Data: data, ExpireAt: c.now().Add(spec.TTL)}
	if err := c.cache.Set(ctx, spec.Key, entry); err != nil {
		c.logWarn(ctx, "directory cache write failed", map[string]any{"resource": spec.Resource, "error": err.Error()})
	}
	return fetchResult[T]{Value: value}, nil
}

func cachedValue[T any](ctx context.Context, c *Client, spec fetchSpec[T]) (T, bool) {
	var zero T
	entry, ok, err := c.cache.Get(ctx, spec.Key)
	if err != nil {
		c.logWarn(ctx, "directory cache read failed", map[string]any{"resource": spec.Resource, "error": err.Error()})
		return zero, false
	}
	if !ok || entry.Expired(c.now()) || len(entry.Data) == 0 {
		return zero, false
	}
	value, err := spec.Decode(entry.Data)
	if err != nil || spec.Empty(value) {
		return zero, false
	}
	return value, true
}
