// Package errors defines the unified error taxonomy for request handling.
// Every failure surfaced to a caller is mapped to one of these kinds so that
// handlers can derive the HTTP status without inspecting error strings.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a request error.
type Kind string

const (
	// KindValidation covers bad or missing request fields (400).
	KindValidation Kind = "validation_error"
	// KindAuth covers missing, malformed, or rejected credentials (401).
	KindAuth Kind = "auth_error"
	// KindRateLimit covers per-user rate limiting (429).
	KindRateLimit Kind = "rate_limit_error"
	// KindUpstream covers provider failures and missing provider config (500).
	KindUpstream Kind = "upstream_error"
	// KindCache covers store read/write failures. Cache errors are never
	// returned to the caller as a failed request; they exist so call sites
	// can log and degrade.
	KindCache Kind = "cache_error"
)

// Reason constants narrow a Kind to the specific failure.
const (
	ReasonEmptyQuestion = "empty-question"
	ReasonEmptyContext  = "empty-context"

	ReasonMissingCredential   = "missing-credential"
	ReasonMalformedCredential = "malformed-credential"
	ReasonInvalidCredential   = "invalid-or-expired"

	ReasonProviderUnavailable   = "provider-unavailable"
	ReasonProviderMissingConfig = "provider-missing-config"
)

// RequestError is the standard error carried through the request pipeline.
type RequestError struct {
	Kind    Kind
	Reason  string
	Message string
	// Detail carries diagnostic payload such as a provider error body,
	// already bounded by the producer. It is logged, and surfaced to the
	// caller for upstream errors only.
	Detail string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s/%s] %s: %s", e.Kind, e.Reason, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Reason, e.Message)
}

// HTTPStatusCode returns the status code to respond with.
func (e *RequestError) HTTPStatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error (400).
func NewValidationError(reason, message string) *RequestError {
	return &RequestError{Kind: KindValidation, Reason: reason, Message: message}
}

// NewAuthError creates an authentication error (401).
func NewAuthError(reason, message string) *RequestError {
	return &RequestError{Kind: KindAuth, Reason: reason, Message: message}
}

// NewRateLimitError creates a rate limit error (429).
func NewRateLimitError(message string) *RequestError {
	return &RequestError{Kind: KindRateLimit, Message: message}
}

// NewUpstreamError creates an upstream provider error (500). detail should
// carry the provider's error payload when one was received.
func NewUpstreamError(reason, message, detail string) *RequestError {
	return &RequestError{Kind: KindUpstream, Reason: reason, Message: message, Detail: detail}
}

// NewCacheError wraps a store failure. Callers log it and continue.
func NewCacheError(operation string, err error) *RequestError {
	return &RequestError{Kind: KindCache, Reason: operation, Message: err.Error()}
}

// AsRequestError unwraps err into a *RequestError if possible.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind Kind) bool {
	re, ok := AsRequestError(err)
	return ok && re.Kind == kind
}
