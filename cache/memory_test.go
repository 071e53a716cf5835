package cache

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-searchcore/core"
)

func TestMemory_RoundTripAndExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	mem := NewMemory().WithClock(clock)
	ctx := context.Background()

	if _, ok, err := mem.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := mem.Set(ctx, "k", core.CacheEntry{Data: []byte(`[1]`), ExpireAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("set: %v", err)
	}
	entry, ok, err := mem.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(entry.Data) != "[1]" {
		t.Fatalf("unexpected data %q", entry.Data)
	}

	entry.Data[0] = 'x'
	again, _, _ := mem.Get(ctx, "k")
	if string(again.Data) != "[1]" {
		t.Fatalf("expected stored entry to be isolated from callers")
	}

	now = now.Add(time.Hour)
	if _, ok, _ := mem.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire at ExpireAt")
	}
	if mem.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped")
	}
}

func TestMemory_LastWriterWins(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	expire := time.Now().UTC().Add(time.Hour)
	_ = mem.Set(ctx, "k", core.CacheEntry{Data: []byte("a"), ExpireAt: expire})
	_ = mem.Set(ctx, "k", core.CacheEntry{Data: []byte("b"), ExpireAt: expire})
	entry, _, _ := mem.Get(ctx, "k")
	if string(entry.Data) != "b" {
		t.Fatalf("expected last write to win, got %q", entry.Data)
	}
}
