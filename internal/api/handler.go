// Package api implements the embedding and answer cache gateways: the HTTP
// handlers that sit between callers, the upstream provider, and the
// question cache store.
package api

import (
	"log/slog"
	"net/http"

	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/metrics"
	"github.com/talkbase/answerd/internal/observability"
	"github.com/talkbase/answerd/internal/provider"
	"github.com/talkbase/answerd/internal/store"
)

// Handler holds the dependencies shared by the gateway endpoints.
type Handler struct {
	store    store.Store
	provider provider.Client
	logger   *slog.Logger
	semantic config.SemanticReuseConfig
}

// NewHandler creates the gateway handler.
func NewHandler(st store.Store, client provider.Client, logger *slog.Logger, semantic config.SemanticReuseConfig) *Handler {
	return &Handler{
		store:    st,
		provider: client,
		logger:   logger,
		semantic: semantic,
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HealthReady reports readiness, degrading when the store is unreachable.
// A degraded store does not fail user requests, but an operator should
// know cache hits have stopped.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness: store unreachable", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requestLogger returns the handler logger annotated with the request ID.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	if id := observability.RequestIDFromContext(r.Context()); id != "" {
		return h.logger.With("request_id", id)
	}
	return h.logger
}

// storeDegraded logs and counts a swallowed store failure. The request
// continues; only cache linkage is lost.
func (h *Handler) storeDegraded(logger *slog.Logger, operation string, err error) {
	metrics.RecordStoreError(operation)
	logger.Warn("cache store degraded", "operation", operation, "error", err)
}
