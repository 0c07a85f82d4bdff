package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements are applied in order with the privileged service
// credential. Statements are idempotent so Migrate can run on every start.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS question_cache (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		question TEXT NOT NULL,
		question_embedding VECTOR(1536),
		ai_answer TEXT,
		context_talk_ids UUID[],
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Exact-match lookups by (user, question) are the hot path.
	`CREATE INDEX IF NOT EXISTS idx_question_cache_user_question
		ON question_cache (user_id, question)`,

	`CREATE INDEX IF NOT EXISTS idx_question_cache_created_at
		ON question_cache (created_at DESC)`,

	// ivfflat index for the semantic-reuse similarity lookup.
	`CREATE INDEX IF NOT EXISTS idx_question_cache_embedding
		ON question_cache USING ivfflat (question_embedding vector_cosine_ops)
		WITH (lists = 100)`,
}

// Migrate applies the question_cache schema. db must be connected with the
// service credential; the restricted request-path role cannot create
// extensions or tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
