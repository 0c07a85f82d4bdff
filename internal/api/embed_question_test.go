package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/store"
	"github.com/talkbase/answerd/pkg/errors"
)

func TestEmbedQuestionMissThenHit(t *testing.T) {
	st := store.NewMemoryStore()
	p := newFakeProvider()
	h := newTestHandler(st, p)

	req := EmbedQuestionRequest{Question: "What is faith?"}

	var first EmbedQuestionResponse
	rr := doJSON(t, h.EmbedQuestion, "user-1", req, &first)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, first.CacheID)
	assert.True(t, float32Equal(p.embedding, first.Embedding))

	var second EmbedQuestionResponse
	rr = doJSON(t, h.EmbedQuestion, "user-1", req, &second)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, second.Cached)
	assert.Equal(t, first.CacheID, second.CacheID)
	assert.True(t, float32Equal(first.Embedding, second.Embedding))

	assert.Equal(t, 1, p.embedCalls, "hit must not call the provider")
}

func TestEmbedQuestionUserScoped(t *testing.T) {
	st := store.NewMemoryStore()
	p := newFakeProvider()
	h := newTestHandler(st, p)

	req := EmbedQuestionRequest{Question: "What is hope?"}

	doJSON(t, h.EmbedQuestion, "user-a", req, nil)

	var resp EmbedQuestionResponse
	rr := doJSON(t, h.EmbedQuestion, "user-b", req, &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Cached, "another user's entry must not be served")
	assert.Equal(t, 2, p.embedCalls)
}

func TestEmbedQuestionExactMatchOnly(t *testing.T) {
	st := store.NewMemoryStore()
	p := newFakeProvider()
	h := newTestHandler(st, p)

	doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "What is faith?"}, nil)

	var resp EmbedQuestionResponse
	doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "what is faith?"}, &resp)
	assert.False(t, resp.Cached, "matching is byte-exact, not case folded")
	assert.Equal(t, 2, p.embedCalls)
}

func TestEmbedQuestionEmptyQuestion(t *testing.T) {
	for name, question := range map[string]string{
		"empty":      "",
		"whitespace": "   \n\t",
	} {
		t.Run(name, func(t *testing.T) {
			p := newFakeProvider()
			h := newTestHandler(store.NewMemoryStore(), p)

			rr := doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: question}, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "question")
			assert.Zero(t, p.embedCalls, "validation failures must not reach the provider")
		})
	}
}

func TestEmbedQuestionMalformedBody(t *testing.T) {
	p := newFakeProvider()
	h := newTestHandler(store.NewMemoryStore(), p)

	rr := doJSON(t, h.EmbedQuestion, "user-1", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, p.embedCalls)
}

func TestEmbedQuestionProviderFailure(t *testing.T) {
	p := newFakeProvider()
	p.embedErr = errors.NewUpstreamError(errors.ReasonProviderUnavailable,
		"embedding provider request failed", "connection refused")
	h := newTestHandler(store.NewMemoryStore(), p)

	rr := doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "What is faith?"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "embedding provider request failed")
	assert.Contains(t, rr.Body.String(), "connection refused",
		"upstream errors carry the provider payload for diagnostics")
}

func TestEmbedQuestionInsertFailureStillReturnsEmbedding(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore(), failWrites: true}
	p := newFakeProvider()
	h := newTestHandler(st, p)

	var resp EmbedQuestionResponse
	rr := doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "What is faith?"}, &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, float32Equal(p.embedding, resp.Embedding))
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.CacheID, "no handle when the entry could not persist")
}

func TestEmbedQuestionLookupFailureDegradesToMiss(t *testing.T) {
	mem := store.NewMemoryStore()
	st := &failingStore{Store: mem, failReads: true}
	p := newFakeProvider()
	h := newTestHandler(st, p)

	var resp EmbedQuestionResponse
	rr := doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "What is faith?"}, &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Cached)
	assert.Equal(t, 1, p.embedCalls, "degraded lookup still pays one provider call")
	assert.Equal(t, 1, mem.Len(), "the fresh entry is still persisted")
}

func TestEmbedQuestionSemanticReuse(t *testing.T) {
	st := store.NewMemoryStore()
	p := newFakeProvider()

	// An answered entry from an earlier session with an identical vector.
	answered := "Faith is trust in things unseen."
	prior := &store.Entry{
		UserID:    "user-1",
		Question:  "What is faith exactly?",
		Embedding: p.embedding,
		Answer:    &answered,
	}
	require.NoError(t, st.Insert(t.Context(), prior))

	h := NewHandler(st, p, testLogger(), config.SemanticReuseConfig{
		Enabled:   true,
		Threshold: 0.95,
	})

	var resp EmbedQuestionResponse
	rr := doJSON(t, h.EmbedQuestion, "user-1", EmbedQuestionRequest{Question: "What is faith?"}, &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Cached, "a fresh embedding was computed")
	assert.Equal(t, prior.ID, resp.CacheID, "handle points at the answered similar entry")
	assert.Equal(t, 1, p.embedCalls)
}
