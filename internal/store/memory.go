package store

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It mirrors PostgresStore semantics, including oldest-first resolution of
// duplicate (user, question) rows.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry // keyed by entry ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// GetByQuestion finds the oldest embedded entry for an exact question match.
func (s *MemoryStore) GetByQuestion(_ context.Context, userID, question string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Entry
	for _, e := range s.entries {
		if e.UserID != userID || e.Question != question || !e.HasEmbedding() {
			continue
		}
		if best == nil || e.CreatedAt.Before(best.CreatedAt) {
			best = e
		}
	}
	return cloneEntry(best), nil
}

// GetByID finds an entry by (userID, id).
func (s *MemoryStore) GetByID(_ context.Context, userID, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	return cloneEntry(e), nil
}

// Insert persists a new entry, minting ID and timestamps when unset.
func (s *MemoryStore) Insert(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// SetAnswer writes the generated answer and source IDs onto an entry.
func (s *MemoryStore) SetAnswer(_ context.Context, userID, id, answer string, talkIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return errEntryNotFound{id: id}
	}

	e.Answer = &answer
	e.ContextTalkIDs = append([]string(nil), talkIDs...)
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// FindSimilarAnswered returns the most similar answered entry above the
// threshold, by cosine similarity.
func (s *MemoryStore) FindSimilarAnswered(_ context.Context, userID string, embedding []float32, threshold float64) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best      *Entry
		bestScore float64
	)
	for _, e := range s.entries {
		if e.UserID != userID || !e.HasAnswer() || !e.HasEmbedding() {
			continue
		}
		score := cosineSimilarity(embedding, e.Embedding)
		if score >= threshold && (best == nil || score > bestScore) {
			best = e
			bestScore = score
		}
	}
	return cloneEntry(best), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

type errEntryNotFound struct{ id string }

func (e errEntryNotFound) Error() string { return "cache entry " + e.id + " not found for user" }

func cloneEntry(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	out := *e
	out.Embedding = append([]float32(nil), e.Embedding...)
	out.ContextTalkIDs = append([]string(nil), e.ContextTalkIDs...)
	if e.Answer != nil {
		answer := *e.Answer
		out.Answer = &answer
	}
	return &out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
