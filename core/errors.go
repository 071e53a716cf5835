package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput             = "SEARCHCORE_BAD_INPUT"
	ServiceErrorDirectoryUnavailable = "SEARCHCORE_DIRECTORY_UNAVAILABLE"
	ServiceErrorMutationRejected     = "SEARCHCORE_MUTATION_REJECTED"
	ServiceErrorSignalsUnavailable   = "SEARCHCORE_SIGNALS_UNAVAILABLE"
	ServiceErrorOverrideStoreFailure = "SEARCHCORE_OVERRIDE_STORE_FAILURE"
	ServiceErrorNotFound             = "SEARCHCORE_NOT_FOUND"
	ServiceErrorUnauthorized         = "SEARCHCORE_UNAUTHORIZED"
	ServiceErrorForbidden            = "SEARCHCORE_FORBIDDEN"
	ServiceErrorRateLimited          = "SEARCHCORE_RATE_LIMITED"
	ServiceErrorOperationFailed      = "SEARCHCORE_OPERATION_FAILED"
	ServiceErrorExternalFailure      = "SEARCHCORE_EXTERNAL_FAILURE"
	ServiceErrorInternal             = "SEARCHCORE_INTERNAL_ERROR"
)

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rejected *MutationRejectedError
	if errors.As(err, &rejected) {
		return rejected.ToServiceError()
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrMutationRejected):
		return newServiceError(err.Error(), goerrors.CategoryOperation, ServiceErrorMutationRejected)
	case errors.Is(err, ErrDirectoryUnavailable):
		return newServiceError(err.Error(), goerrors.CategoryExternal, ServiceErrorDirectoryUnavailable)
	case errors.Is(err, ErrNetworkIDRequired), errors.Is(err, ErrSignalsReaderRequired):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorSignalsUnavailable)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryAuth:
		return ServiceErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ServiceErrorForbidden
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryOperation:
		return ServiceErrorOperationFailed
	case goerrors.CategoryExternal:
		return ServiceErrorExternalFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict, goerrors.CategoryOperation:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
