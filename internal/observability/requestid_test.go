package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		supplied   string
		wantReused bool
	}{
		{"generates when absent", "", false},
		{"reuses well-formed id", "client-id-123", true},
		{"rejects id with spaces", "bad id", false},
		{"rejects oversized id", string(make([]byte, 200)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.supplied != "" {
				req.Header.Set(RequestIDHeader, tt.supplied)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if seen == "" {
				t.Fatal("no request ID in handler context")
			}
			if got := rr.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header %q != context id %q", got, seen)
			}
			if tt.wantReused && seen != tt.supplied {
				t.Errorf("id = %q, want supplied %q", seen, tt.supplied)
			}
			if !tt.wantReused && tt.supplied != "" && seen == tt.supplied {
				t.Errorf("malformed id %q was reused", tt.supplied)
			}
		})
	}
}
