package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestServiceErrorMapper_AssignsStableCodes(t *testing.T) {
	mapped := serviceErrorMapper(fmt.Errorf("wrap: %w", ErrDirectoryUnavailable))
	if mapped.TextCode != ServiceErrorDirectoryUnavailable {
		t.Fatalf("expected directory unavailable code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", mapped.Code)
	}

	mapped = serviceErrorMapper(ErrNetworkIDRequired)
	if mapped.TextCode != ServiceErrorSignalsUnavailable {
		t.Fatalf("expected signals unavailable code, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", mapped.Category)
	}

	mapped = serviceErrorMapper(stderrors.New("core: override not found"))
	if mapped.TextCode != ServiceErrorNotFound {
		t.Fatalf("expected not found code, got %q", mapped.TextCode)
	}
}

func TestServiceErrorMapper_MutationRejected(t *testing.T) {
	err := NewReadOnlyGate().BeforeMutation(ReadOnlyFallback("N", ReasonNoMatch), MutationCommit)
	mapped := serviceErrorMapper(fmt.Errorf("engine: %w", err))
	if mapped.TextCode != ServiceErrorMutationRejected {
		t.Fatalf("expected mutation rejected code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", mapped.Code)
	}
}

func TestServiceErrorMapper_KeepsRichErrors(t *testing.T) {
	rich := goerrors.New("upstream", goerrors.CategoryExternal)
	mapped := serviceErrorMapper(rich)
	if mapped.TextCode != ServiceErrorExternalFailure {
		t.Fatalf("expected external failure default code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 default, got %d", mapped.Code)
	}
}

func TestServiceResolve_MapsSignalErrors(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Resolve(context.Background())
	if err == nil {
		t.Fatalf("expected missing signals reader error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorSignalsUnavailable {
		t.Fatalf("expected signals unavailable code, got %q", richErr.TextCode)
	}
}
