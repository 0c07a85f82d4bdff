package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/internal/auth"
	"github.com/talkbase/answerd/internal/metrics"
	"github.com/talkbase/answerd/internal/prompt"
	"github.com/talkbase/answerd/pkg/errors"
)

// ContextTalk is one retrieved passage supplied as grounding.
type ContextTalk struct {
	Title   string `json:"title"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	TalkID  string `json:"talk_id,omitempty"`
}

// GenerateAnswerRequest is the answer gateway request body. CacheID is the
// handle minted by the embedding gateway; when present and resolvable to an
// answered entry, generation is skipped.
type GenerateAnswerRequest struct {
	Question     string        `json:"question"`
	ContextTalks []ContextTalk `json:"context_talks"`
	CacheID      string        `json:"cache_id,omitempty"`
}

// GenerateAnswerResponse is the answer gateway response body.
type GenerateAnswerResponse struct {
	Answer string `json:"answer"`
	Cached bool   `json:"cached"`
}

// GenerateAnswer produces a cited answer from the supplied passages,
// reusing a previously cached answer when the handle resolves to one.
// Passages go into the prompt in caller-supplied order; no re-ranking.
func (h *Handler) GenerateAnswer(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)
	userID := auth.UserIDFromContext(r.Context())

	var req GenerateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logger, errors.NewValidationError(errors.ReasonEmptyQuestion,
			"request body must be JSON with question and context_talks fields"))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, logger, errors.NewValidationError(errors.ReasonEmptyQuestion,
			"question must not be empty"))
		return
	}
	if len(req.ContextTalks) == 0 {
		writeError(w, logger, errors.NewValidationError(errors.ReasonEmptyContext,
			"context_talks must not be empty"))
		return
	}

	// Answer cache lookup by handle. A store failure degrades to a miss.
	if req.CacheID != "" {
		entry, err := h.store.GetByID(r.Context(), userID, req.CacheID)
		if err != nil {
			h.storeDegraded(logger, "get_by_id", err)
			entry = nil
		}
		if entry.HasAnswer() {
			metrics.RecordCacheLookup("answer", true)
			writeJSON(w, http.StatusOK, GenerateAnswerResponse{
				Answer: *entry.Answer,
				Cached: true,
			})
			return
		}
	}
	metrics.RecordCacheLookup("answer", false)

	passages := make([]prompt.Passage, len(req.ContextTalks))
	for i, talk := range req.ContextTalks {
		passages[i] = prompt.Passage{
			Title:   talk.Title,
			Speaker: talk.Speaker,
			Text:    talk.Text,
		}
	}

	answer, err := h.provider.Complete(r.Context(),
		prompt.SystemInstruction, prompt.Build(req.Question, passages))
	metrics.RecordProviderRequest("completion", err)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	// Persist the answer back onto the handle's entry. Non-fatal: the
	// generated answer is returned regardless.
	if req.CacheID != "" {
		talkIDs := make([]string, 0, len(req.ContextTalks))
		for _, talk := range req.ContextTalks {
			if talk.TalkID != "" {
				talkIDs = append(talkIDs, talk.TalkID)
			}
		}
		if err := h.store.SetAnswer(r.Context(), userID, req.CacheID, answer, talkIDs); err != nil {
			h.storeDegraded(logger, "set_answer", err)
		}
	}

	writeJSON(w, http.StatusOK, GenerateAnswerResponse{Answer: answer, Cached: false})
}
