package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-searchcore/core"
)

// Memory is an in-process cache. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]core.CacheEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: map[string]core.CacheEntry{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for expiry checks.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (core.CacheEntry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return core.CacheEntry{}, false, nil
	}
	if entry.Expired(m.now()) {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.ExpireAt.Equal(entry.ExpireAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return core.CacheEntry{}, false, nil
	}
	return cloneEntry(entry), true, nil
}

func (m *Memory) Set(_ context.Context, key string, entry core.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cloneEntry(entry)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneEntry(entry core.CacheEntry) core.CacheEntry {
	return core.CacheEntry{
		Data:     append([]byte(nil), entry.Data...),
		ExpireAt: entry.ExpireAt.UTC(),
	}
}

var _ core.Cache = (*Memory)(nil)
