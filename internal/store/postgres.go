package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL with the pgvector
// extension for the question_embedding column.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings. URL carries no
// userinfo; Credential is "role:password" for the tier this connection
// should run as.
type PostgresConfig struct {
	URL          string
	Credential   string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// DSN combines the credential-free store URL with a credential tier.
func DSN(storeURL, credential string) (string, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}
	if credential != "" {
		role, password, found := strings.Cut(credential, ":")
		if found {
			u.User = url.UserPassword(role, password)
		} else {
			u.User = url.User(role)
		}
	}
	return u.String(), nil
}

// NewPostgresStore opens a connection pool for the given credential tier.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	dsn, err := DSN(cfg.URL, cfg.Credential)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying pool, used by the migrator.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const entryColumns = `id, user_id, question, question_embedding::text,
       ai_answer, context_talk_ids::text[], created_at, updated_at`

// GetByQuestion finds the oldest embedded entry for an exact question match.
func (s *PostgresStore) GetByQuestion(ctx context.Context, userID, question string) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM question_cache
		WHERE user_id = $1 AND question = $2 AND question_embedding IS NOT NULL
		ORDER BY created_at ASC
		LIMIT 1`

	return s.scanEntry(s.db.QueryRowContext(ctx, query, userID, question))
}

// GetByID finds an entry by (userID, id).
func (s *PostgresStore) GetByID(ctx context.Context, userID, id string) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM question_cache
		WHERE user_id = $1 AND id = $2`

	return s.scanEntry(s.db.QueryRowContext(ctx, query, userID, id))
}

// Insert persists a new entry, minting ID and timestamps when unset.
func (s *PostgresStore) Insert(ctx context.Context, entry *Entry) error {
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

	var embedding any
	if len(entry.Embedding) > 0 {
		embedding = encodeVector(entry.Embedding)
	}

	query := `
		INSERT INTO question_cache
			(id, user_id, question, question_embedding, context_talk_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4::vector, $5::uuid[], $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Question, embedding,
		talkIDsParam(entry.ContextTalkIDs), entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

// SetAnswer writes the generated answer and source IDs onto an entry.
func (s *PostgresStore) SetAnswer(ctx context.Context, userID, id, answer string, talkIDs []string) error {
	query := `
		UPDATE question_cache
		SET ai_answer = $1, context_talk_ids = $2::uuid[], updated_at = $3
		WHERE user_id = $4 AND id = $5`

	res, err := s.db.ExecContext(ctx, query,
		answer, talkIDsParam(talkIDs), time.Now().UTC(), userID, id,
	)
	if err != nil {
		return fmt.Errorf("update cache entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("cache entry %s not found for user", id)
	}
	return nil
}

// FindSimilarAnswered performs a cosine-similarity lookup over answered
// entries using the pgvector <=> operator.
func (s *PostgresStore) FindSimilarAnswered(ctx context.Context, userID string, embedding []float32, threshold float64) (*Entry, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + entryColumns + `
		FROM question_cache
		WHERE user_id = $1
		  AND ai_answer IS NOT NULL
		  AND question_embedding IS NOT NULL
		  AND 1 - (question_embedding <=> $2::vector) >= $3
		ORDER BY question_embedding <=> $2::vector
		LIMIT 1`

	return s.scanEntry(s.db.QueryRowContext(ctx, query, userID, encodeVector(embedding), threshold))
}

func (s *PostgresStore) scanEntry(row *sql.Row) (*Entry, error) {
	var (
		entry     Entry
		embedding sql.NullString
		answer    sql.NullString
		talkIDs   pq.StringArray
	)

	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Question, &embedding,
		&answer, &talkIDs, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry: %w", err)
	}

	if embedding.Valid {
		vec, err := parseVector(embedding.String)
		if err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
		entry.Embedding = vec
	}
	if answer.Valid {
		entry.Answer = &answer.String
	}
	if len(talkIDs) > 0 {
		entry.ContextTalkIDs = []string(talkIDs)
	}

	return &entry, nil
}

// talkIDsParam maps a nil slice to a NULL uuid[] column.
func talkIDsParam(ids []string) any {
	if len(ids) == 0 {
		return nil
	}
	return pq.Array(ids)
}
