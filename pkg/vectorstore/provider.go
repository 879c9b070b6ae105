// Package vectorstore defines the document-retrieval contract the vector
// engine calls (spec.md §5) and a Postgres/pgvector default adapter.
package vectorstore

import "context"

// FilterOp is one comparison operator in a vector search filter expression
// (spec.md §5: "Filters are JSON expressions over document attributes").
type FilterOp string

const (
	FilterEq          FilterOp = "eq"
	FilterContainsAny FilterOp = "containsany"
)

// Filter is a single JSON filter expression, e.g.
// {type: "containsany", key: "device_variant_id", value: [...]}.
type Filter struct {
	Type  FilterOp `json:"type"`
	Key   string   `json:"key"`
	Value []string `json:"value"`
}

// ContentBlock is one unit of retrieved text (spec.md §5's content array).
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SearchResult is one ranked hit (spec.md §5).
type SearchResult struct {
	Score      float64          `json:"score"`
	FileID     string           `json:"file_id"`
	Attributes map[string]any   `json:"attributes"`
	Content    []ContentBlock   `json:"content"`
}

// Embedder turns query text into the embedding space the store indexes
// documents in. The vector store itself is an out-of-core collaborator
// (spec.md §0); embedding generation is a further external call this
// package takes as an injected seam rather than a fixed dependency.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider is the vector-similarity search contract (spec.md §5).
type Provider interface {
	Search(ctx context.Context, query string, filter *Filter, maxResults int) ([]SearchResult, error)
}
