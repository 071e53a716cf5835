package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-searchcore/core"
)

// failureClass fixes the category, status and text code of one kind of
// adapter failure.
type failureClass struct {
	category goerrors.Category
	status   int
	textCode string
}

var (
	// misconfigured adapters never reach the network.
	misconfigured = failureClass{goerrors.CategoryInternal, http.StatusInternalServerError, core.ServiceErrorInternal}
	// badRequest covers requests that cannot be built.
	badRequest = failureClass{goerrors.CategoryBadInput, http.StatusBadRequest, core.ServiceErrorBadInput}
	// upstream failures are reported as the directory being unavailable,
	// the only outbound call this module makes.
	upstream = failureClass{goerrors.CategoryExternal, http.StatusBadGateway, core.ServiceErrorDirectoryUnavailable}
)

// fail builds the envelope, wrapping cause when present. The adapter kind
// is always part of the metadata.
func (c failureClass) fail(cause error, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if cause != nil {
		err = goerrors.Wrap(cause, c.category, message)
	} else {
		err = goerrors.New(message, c.category)
	}
	err = err.WithCode(c.status).WithTextCode(c.textCode)
	fields := map[string]any{"adapter": KindREST}
	for key, value := range metadata {
		fields[key] = value
	}
	err.WithMetadata(fields)
	return err
}
