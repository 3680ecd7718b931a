package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kucoinpay/security"
)

const (
	ServiceErrorBadInput                = "SERVICE_BAD_INPUT"
	ServiceErrorNotFound                = "SERVICE_NOT_FOUND"
	ServiceErrorConflict                = "SERVICE_CONFLICT"
	ServiceErrorPermissionDenied        = "SERVICE_PERMISSION_DENIED"
	ServiceErrorRateLimited             = "SERVICE_RATE_LIMITED"
	ServiceErrorCryptoFailure           = "SERVICE_CRYPTO_FAILURE"
	ServiceErrorSignatureInvalid        = "SERVICE_SIGNATURE_INVALID"
	ServiceErrorUnknownEventType        = "SERVICE_UNKNOWN_EVENT_TYPE"
	ServiceErrorDecryptFailed           = "SERVICE_DECRYPT_FAILED"
	ServiceErrorProviderOperationFailed = "SERVICE_PROVIDER_OPERATION_FAILED"
	ServiceErrorPersistenceFailed       = "SERVICE_PERSISTENCE_FAILED"
	ServiceErrorInternal                = "SERVICE_INTERNAL_ERROR"
)

// ErrRecordNotFound is returned by stores when a lookup or a patch without
// CreateIfMissing finds no row.
var ErrRecordNotFound = errors.New("core: record not found")

// Metadata keys attached to provider failures.
const (
	ErrorMetaOperation       = "operation"
	ErrorMetaProviderCode    = "provider_code"
	ErrorMetaProviderMessage = "provider_message"
	ErrorMetaHTTPStatus      = "http_status"
)

// MapError normalizes any error into a service envelope with a category,
// HTTP status and text code.
func MapError(err error) *goerrors.Error {
	return serviceErrorMapper(err)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, security.ErrDecrypt):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorDecryptFailed)
	case errors.Is(err, security.ErrCrypto), errors.Is(err, security.ErrKey):
		return newServiceError(err.Error(), goerrors.CategoryInternal, ServiceErrorCryptoFailure)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return newServiceError(err.Error(), goerrors.CategoryConflict, ServiceErrorConflict)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
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
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ServiceErrorPermissionDenied
	case goerrors.CategoryConflict:
		return ServiceErrorConflict
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryExternal:
		return ServiceErrorProviderOperationFailed
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
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fieldChecks collects missing or malformed fields so one validation error
// reports all of them.
type fieldChecks struct {
	fields []goerrors.FieldError
}

func (c *fieldChecks) require(field string, present bool) {
	if !present {
		c.fail(field, "is required")
	}
}

func (c *fieldChecks) fail(field string, message string) {
	c.fields = append(c.fields, goerrors.FieldError{Field: field, Message: message})
}

func (c *fieldChecks) err(operation string) error {
	if len(c.fields) == 0 {
		return nil
	}
	return goerrors.NewValidation(operation+": validation failed", c.fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func cryptoError(operation string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, operation+": signing failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorCryptoFailure).
		WithSeverity(goerrors.SeverityCritical)
}

func persistenceError(operation string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, operation+": persistence failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorPersistenceFailed)
}

func transportFailure(operation string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, operation+": provider request failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorProviderOperationFailed).
		WithMetadata(map[string]any{ErrorMetaOperation: operation})
}

func dependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorInternal)
}

// providerError builds a DownstreamFailure for a rejected provider call.
// message is the catalog message when one exists, else the raw one.
func providerError(operation string, status int, code string, message string, raw string) error {
	if strings.TrimSpace(message) == "" {
		message = "provider rejected the request"
	}
	return goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorProviderOperationFailed).
		WithMetadata(map[string]any{
			ErrorMetaOperation:       operation,
			ErrorMetaProviderCode:    code,
			ErrorMetaProviderMessage: raw,
			ErrorMetaHTTPStatus:      status,
		})
}

func internalError(operation string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, operation+": internal failure").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorInternal)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	return err
}
