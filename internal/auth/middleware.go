package auth

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/pkg/errors"
)

// Middleware provides HTTP middleware that verifies the bearer credential
// and injects the resolved user ID into the request context.
type Middleware struct {
	verifier Verifier
	logger   *slog.Logger
}

// NewMiddleware creates an authentication middleware.
func NewMiddleware(verifier Verifier, logger *slog.Logger) *Middleware {
	return &Middleware{verifier: verifier, logger: logger}
}

// Authenticate rejects the request with 401 before the handler runs unless
// the credential resolves to a user.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			m.writeAuthError(w, err)
			return
		}

		userID, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			m.logger.Debug("token verification failed", "error", err)
			m.writeAuthError(w, err)
			return
		}

		ctx := ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) writeAuthError(w http.ResponseWriter, err error) {
	message := "unauthorized"
	if re, ok := errors.AsRequestError(err); ok {
		message = re.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
