package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/internal/auth"
	"github.com/talkbase/answerd/internal/metrics"
	"github.com/talkbase/answerd/internal/store"
	"github.com/talkbase/answerd/pkg/errors"
)

// EmbedQuestionRequest is the embedding gateway request body.
type EmbedQuestionRequest struct {
	Question string `json:"question"`
}

// EmbedQuestionResponse is the embedding gateway response body. CacheID is
// omitted when the entry could not be persisted; Cached reports whether the
// embedding came from the cache and must always be accurate.
type EmbedQuestionResponse struct {
	Embedding []float32 `json:"embedding"`
	CacheID   string    `json:"cache_id,omitempty"`
	Cached    bool      `json:"cached"`
}

// EmbedQuestion returns the embedding for a question, from cache when an
// exact (user, question) entry exists, otherwise from the provider. At most
// one provider call is made per distinct (user, question) pair that
// persists successfully.
func (h *Handler) EmbedQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)
	userID := auth.UserIDFromContext(r.Context())

	var req EmbedQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logger, errors.NewValidationError(errors.ReasonEmptyQuestion,
			"request body must be JSON with a question field"))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, logger, errors.NewValidationError(errors.ReasonEmptyQuestion,
			"question must not be empty"))
		return
	}

	// Exact-match lookup. A store failure here is a degraded miss, never a
	// failed request.
	entry, err := h.store.GetByQuestion(r.Context(), userID, req.Question)
	if err != nil {
		h.storeDegraded(logger, "get_by_question", err)
		entry = nil
	}
	if entry.HasEmbedding() {
		metrics.RecordCacheLookup("embedding", true)
		writeJSON(w, http.StatusOK, EmbedQuestionResponse{
			Embedding: entry.Embedding,
			CacheID:   entry.ID,
			Cached:    true,
		})
		return
	}
	metrics.RecordCacheLookup("embedding", false)

	embedding, err := h.provider.Embed(r.Context(), req.Question)
	metrics.RecordProviderRequest("embedding", err)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	resp := EmbedQuestionResponse{Embedding: embedding, Cached: false}

	newEntry := &store.Entry{
		UserID:    userID,
		Question:  req.Question,
		Embedding: embedding,
	}
	if err := h.store.Insert(r.Context(), newEntry); err != nil {
		// Non-fatal: the embedding is still returned, with no handle so
		// downstream knows linkage is impossible for this request.
		h.storeDegraded(logger, "insert", err)
	} else {
		resp.CacheID = newEntry.ID
	}

	// Opt-in: link this request to an already-answered entry for a
	// near-identical question, so the answer gateway can hit.
	if h.semantic.Enabled {
		if similar, err := h.store.FindSimilarAnswered(r.Context(), userID, embedding, h.semantic.Threshold); err != nil {
			h.storeDegraded(logger, "find_similar", err)
		} else if similar != nil {
			logger.Info("semantic reuse matched answered entry",
				"entry_id", similar.ID)
			resp.CacheID = similar.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
