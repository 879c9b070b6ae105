package vectorstore

import (
	"context"
	"hash/fnv"
)

// HashEmbedder is a deterministic stand-in Embedder. No embedding-model
// client exists anywhere in this codebase's dependency surface (the
// provider contract treats embedding generation as an external seam, not
// something this repo implements to production quality), so wiring needs a
// concrete Embedder that doesn't depend on an unavailable third-party
// service. It hashes each alphanumeric token into one bucket of a
// fixed-width float vector and counts hits — stable enough for wiring and tests, not
// for retrieval quality. Swap in a real embedding client via the same
// Embedder interface at deploy time.
type HashEmbedder struct {
	Dims int
}

// NewHashEmbedder builds an embedder producing vectors of the given width.
func NewHashEmbedder(dims int) *HashEmbedder {
	return &HashEmbedder{Dims: dims}
}

// Embed implements Embedder.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out := make([]float32, e.Dims)
	if e.Dims == 0 {
		return out, nil
	}
	for _, token := range tokenizeForEmbedding(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		idx := int(h.Sum32()) % e.Dims
		if idx < 0 {
			idx += e.Dims
		}
		out[idx] += 1
	}
	return out, nil
}

func tokenizeForEmbedding(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
