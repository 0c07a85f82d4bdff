package api

import (
	"net/http"
)

// RouteOptions configures optional middleware on the gateway routes.
type RouteOptions struct {
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler
}

// Routes registers the service endpoints on a new mux. Auth wraps both
// gateway routes; rate limiting, when configured, runs inside auth so the
// bucket is keyed by a verified user.
func Routes(h *Handler, opts RouteOptions) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", h.HealthLive)
	mux.HandleFunc("GET /health/ready", h.HealthReady)

	chain := func(handler http.Handler) http.Handler {
		if opts.RateLimit != nil {
			handler = opts.RateLimit(handler)
		}
		if opts.Auth != nil {
			handler = opts.Auth(handler)
		}
		return handler
	}

	mux.Handle("POST /v1/embed-question", chain(http.HandlerFunc(h.EmbedQuestion)))
	mux.Handle("POST /v1/generate-answer", chain(http.HandlerFunc(h.GenerateAnswer)))

	return mux
}
