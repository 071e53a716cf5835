package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// MutationRejectedError is returned by ReadOnlyGate when a mutating call is
// attempted while the read-only fallback is active.
type MutationRejectedError struct {
	Operation      MutationKind
	FallbackCoreID string
	Reason         string
}

func (e *MutationRejectedError) Error() string {
	if e == nil {
		return ErrMutationRejected.Error()
	}
	message := fmt.Sprintf("%s: %s on %q", ErrMutationRejected.Error(), e.Operation, e.FallbackCoreID)
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		message += " (" + reason + ")"
	}
	return message
}

func (e *MutationRejectedError) Unwrap() error {
	return ErrMutationRejected
}

func (e *MutationRejectedError) ToServiceError() *goerrors.Error {
	message := ErrMutationRejected.Error()
	metadata := map[string]any{}
	if e != nil {
		message = e.Error()
		metadata["operation"] = string(e.Operation)
		metadata["core_id"] = e.FallbackCoreID
		metadata["reason"] = e.Reason
	}
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusConflict).
		WithTextCode(ServiceErrorMutationRejected)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func IsMutationRejected(err error) bool {
	return errors.Is(err, ErrMutationRejected)
}

// ReadOnlyGate must be consulted before every update, delete or commit is
// issued to the query engine.
type ReadOnlyGate struct{}

func NewReadOnlyGate() ReadOnlyGate {
	return ReadOnlyGate{}
}

func (ReadOnlyGate) BeforeMutation(decision ConnectionDecision, op MutationKind) error {
	if !decision.ReadOnly() {
		return nil
	}
	return &MutationRejectedError{
		Operation:      op,
		FallbackCoreID: decision.FallbackCoreID,
		Reason:         decision.Reason,
	}
}

// Allows reports the gate verdict without building an error.
func (g ReadOnlyGate) Allows(decision ConnectionDecision) bool {
	return g.BeforeMutation(decision, MutationUpdate) == nil
}
