// Package store persists question cache entries: a user's question, its
// embedding, and the answer generated from retrieved passages. Every lookup
// and mutation is scoped by user ID; cross-user access is not expressible
// through this interface.
package store

import (
	"context"
	"time"
)

// Entry is a persisted question cache record.
//
// Embedding is nil until computed and immutable once set. Answer is nil
// until the answer gateway fills it; ContextTalkIDs records which passages
// produced the answer.
type Entry struct {
	ID             string
	UserID         string
	Question       string
	Embedding      []float32
	Answer         *string
	ContextTalkIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasEmbedding reports whether the embedding has been computed.
func (e *Entry) HasEmbedding() bool {
	return e != nil && len(e.Embedding) > 0
}

// HasAnswer reports whether an answer has been persisted.
func (e *Entry) HasAnswer() bool {
	return e != nil && e.Answer != nil && *e.Answer != ""
}

// Store is the persistence interface for question cache entries.
//
// Lookups return (nil, nil) on a clean miss. Inserts are at-least-once
// under concurrent misses for the same (user, question): no unique
// constraint dedupes them, and GetByQuestion resolves duplicates by taking
// the oldest row.
type Store interface {
	// GetByQuestion finds the oldest entry for (userID, question) that has
	// a computed embedding. Matching is exact string equality.
	GetByQuestion(ctx context.Context, userID, question string) (*Entry, error)

	// GetByID finds an entry by (userID, id).
	GetByID(ctx context.Context, userID, id string) (*Entry, error)

	// Insert persists a new entry, minting ID and timestamps when unset.
	Insert(ctx context.Context, entry *Entry) error

	// SetAnswer writes the generated answer and the passage source IDs onto
	// an existing entry and bumps its updated_at.
	SetAnswer(ctx context.Context, userID, id, answer string, talkIDs []string) error

	// FindSimilarAnswered returns the answered entry whose question
	// embedding is most similar to the given one, if its cosine similarity
	// meets the threshold. Returns (nil, nil) when nothing qualifies.
	FindSimilarAnswered(ctx context.Context, userID string, embedding []float32, threshold float64) (*Entry, error)

	// Ping checks store connectivity.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
