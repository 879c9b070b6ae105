package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgvectorStore is the default Provider adapter: PostgreSQL with the
// pgvector extension, grounded on the pattern used for a similarly-shaped
// control-plane vector store (pool lifecycle, migrate-on-connect, cosine
// distance ranking).
type PgvectorStore struct {
	pool       *pgxpool.Pool
	embedder   Embedder
	dimensions int
}

// NewPgvectorStore connects, registers the pgvector type on every pooled
// connection, and ensures the backing table/index exist.
func NewPgvectorStore(ctx context.Context, connURL string, dimensions int, embedder Embedder) (*PgvectorStore, error) {
	cfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: parse connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vectorstore: ping: %w", err)
	}

	s := &PgvectorStore{pool: pool, embedder: embedder, dimensions: dimensions}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vectorstore: migrate: %w", err)
	}
	return s, nil
}

func (s *PgvectorStore) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS retrieval_documents (
			file_id    TEXT PRIMARY KEY,
			content    TEXT NOT NULL DEFAULT '',
			attributes JSONB NOT NULL DEFAULT '{}',
			embedding  vector(%d) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_retrieval_documents_attributes
			ON retrieval_documents USING gin (attributes);
	`, s.dimensions)
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Search implements Provider by embedding the query text, then ranking
// indexed documents by cosine distance, narrowed by filter when present.
func (s *PgvectorStore) Search(ctx context.Context, query string, filter *Filter, maxResults int) ([]SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed query: %w", err)
	}

	sql := `SELECT file_id, content, attributes, 1 - (embedding <=> $1) AS score
		FROM retrieval_documents`
	args := []any{pgvector.NewVector(vec)}

	if where, whereArgs := filterClause(filter, len(args)+1); where != "" {
		sql += " WHERE " + where
		args = append(args, whereArgs...)
	}
	sql += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args)+1)
	args = append(args, maxResults)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			fileID, content string
			attrRaw         []byte
			score           float64
		)
		if err := rows.Scan(&fileID, &content, &attrRaw, &score); err != nil {
			return nil, fmt.Errorf("vectorstore: scan: %w", err)
		}
		var attrs map[string]any
		if len(attrRaw) > 0 {
			if err := json.Unmarshal(attrRaw, &attrs); err != nil {
				return nil, fmt.Errorf("vectorstore: unmarshal attributes: %w", err)
			}
		}
		out = append(out, SearchResult{
			Score:      score,
			FileID:     fileID,
			Attributes: attrs,
			Content:    []ContentBlock{{Type: "text", Text: content}},
		})
	}
	return out, rows.Err()
}

// filterClause translates spec.md §5's filter shape into a WHERE fragment.
// Only the two operators exercised by the documented filter example are
// implemented; an unrecognized op is ignored rather than rejected, since
// filters are advisory ranking narrowing rather than a full query language.
func filterClause(filter *Filter, paramIdx int) (string, []any) {
	if filter == nil {
		return "", nil
	}
	switch filter.Type {
	case FilterEq:
		if len(filter.Value) == 0 {
			return "", nil
		}
		return fmt.Sprintf("attributes->>'%s' = $%d", sanitizeIdent(filter.Key), paramIdx), []any{filter.Value[0]}
	case FilterContainsAny:
		if len(filter.Value) == 0 {
			return "", nil
		}
		return fmt.Sprintf("attributes->'%s' ?| $%d", sanitizeIdent(filter.Key), paramIdx), []any{filter.Value}
	default:
		return "", nil
	}
}

// sanitizeIdent strips characters that would let an attribute key break out
// of the JSONB accessor; attribute keys come from document ingestion
// config, not end-user input, but this keeps the query construction honest.
func sanitizeIdent(key string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, key)
}

// Close releases the connection pool.
func (s *PgvectorStore) Close() {
	s.pool.Close()
}
