package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestAPIVersionValidate(t *testing.T) {
	if err := APIVersionV3.Validate(); err != nil {
		t.Fatalf("expected v3 to validate: %v", err)
	}
	if err := APIVersion("v9").Validate(); !errors.Is(err, ErrInvalidAPIVersion) {
		t.Fatalf("expected invalid api version, got %v", err)
	}
}

func TestKeySetEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "[]", " "} {
		if !(KeySet{Raw: json.RawMessage(raw)}).Empty() {
			t.Fatalf("expected %q to be empty", raw)
		}
	}
	keys := KeySet{Raw: json.RawMessage(`{"key":"abc","secret_key":"def"}`)}
	if keys.Empty() {
		t.Fatalf("expected populated key set")
	}
	var decoded map[string]string
	if err := keys.Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["key"] != "abc" {
		t.Fatalf("unexpected decoded keys %#v", decoded)
	}
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := CacheEntry{ExpireAt: now.Add(time.Minute)}
	if entry.Expired(now) {
		t.Fatalf("expected unexpired entry")
	}
	if !entry.Expired(now.Add(time.Minute)) {
		t.Fatalf("expected entry to expire at ExpireAt")
	}
}

func TestOverrideConfigValidate(t *testing.T) {
	if err := (OverrideConfig{}).Validate(); err == nil {
		t.Fatalf("expected empty override to be rejected")
	}
	if err := (OverrideConfig{Host: "h", Port: 70000}).Validate(); err == nil {
		t.Fatalf("expected invalid port")
	}
	if err := (OverrideConfig{Host: "h", Scheme: "gopher"}).Validate(); err == nil {
		t.Fatalf("expected invalid scheme")
	}
	if err := (OverrideConfig{IndexID: "CUSTOM-1"}).Validate(); err != nil {
		t.Fatalf("expected index-only override to validate: %v", err)
	}
}

func TestConnectionDecisionMap(t *testing.T) {
	fields := ReadOnlyFallback("WXYZ-12345", ReasonNoMatch).Map()
	if fields["decision"] != string(DecisionReadOnlyFallback) || fields["read_only"] != true {
		t.Fatalf("unexpected decision fields %#v", fields)
	}
	if fields["core_id"] != "WXYZ-12345" {
		t.Fatalf("expected fallback core id, got %#v", fields["core_id"])
	}
	if _, ok := Disabled().Map()["core_id"]; ok {
		t.Fatalf("disabled decision has no target core")
	}
}

func TestMutationKindValidate(t *testing.T) {
	for _, kind := range []MutationKind{MutationUpdate, MutationDelete, MutationCommit} {
		if err := kind.Validate(); err != nil {
			t.Fatalf("expected %q to validate: %v", kind, err)
		}
	}
	if err := MutationKind("optimize").Validate(); !errors.Is(err, ErrInvalidMutationKind) {
		t.Fatalf("expected invalid mutation kind, got %v", err)
	}
}
