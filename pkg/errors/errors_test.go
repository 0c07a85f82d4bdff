package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		want int
	}{
		{"validation", NewValidationError(ReasonEmptyContext, "context_talks must not be empty"), http.StatusBadRequest},
		{"auth missing", NewAuthError(ReasonMissingCredential, "authorization header required"), http.StatusUnauthorized},
		{"auth invalid", NewAuthError(ReasonInvalidCredential, "token rejected"), http.StatusUnauthorized},
		{"rate limit", NewRateLimitError("slow down"), http.StatusTooManyRequests},
		{"upstream", NewUpstreamError(ReasonProviderUnavailable, "embedding request failed", `{"error":"overloaded"}`), http.StatusInternalServerError},
		{"cache", NewCacheError("insert", fmt.Errorf("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorIncludesDetail(t *testing.T) {
	err := NewUpstreamError(ReasonProviderUnavailable, "chat completion failed", `{"error":{"message":"rate limited"}}`)
	msg := err.Error()
	if want := "provider-unavailable"; !strings.Contains(msg, want) {
		t.Errorf("Error() = %q, missing %q", msg, want)
	}
	if want := "rate limited"; !strings.Contains(msg, want) {
		t.Errorf("Error() = %q, missing provider detail %q", msg, want)
	}
}

func TestAsRequestError(t *testing.T) {
	base := NewAuthError(ReasonMalformedCredential, "empty bearer token")
	wrapped := fmt.Errorf("verify identity: %w", base)

	re, ok := AsRequestError(wrapped)
	if !ok {
		t.Fatal("AsRequestError() failed to unwrap")
	}
	if re.Reason != ReasonMalformedCredential {
		t.Errorf("Reason = %q, want %q", re.Reason, ReasonMalformedCredential)
	}

	if _, ok := AsRequestError(fmt.Errorf("plain error")); ok {
		t.Error("AsRequestError() matched a non-RequestError")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewCacheError("get_by_question", fmt.Errorf("timeout")))
	if !IsKind(err, KindCache) {
		t.Error("IsKind(KindCache) = false, want true")
	}
	if IsKind(err, KindUpstream) {
		t.Error("IsKind(KindUpstream) = true, want false")
	}
}
