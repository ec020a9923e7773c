package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrBackendUnavailable = errors.New("embedding backend unavailable")
	ErrUnknownKind        = errors.New("unknown backend kind")
	ErrUnknownModel       = errors.New("unknown model reference")
	ErrNotFitted          = errors.New("lexical vocabulary not fitted")
	ErrEmptyText          = errors.New("text cannot be empty")
)

// Kind identifies one of the closed set of backend variants.
type Kind string

const (
	// KindService is a dense neural embedding service reached over HTTP.
	KindService Kind = "service"
	// KindSentence is an in-process sentence-embedding model.
	KindSentence Kind = "sentence"
	// KindLexical is the TF-IDF frequency vectorizer. It never fails to
	// initialize and terminates every fallback chain.
	KindLexical Kind = "lexical"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindService, KindSentence, KindLexical:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Vector is one embedding row.
type Vector []float32

// Matrix holds one embedding row per input text, in input order.
type Matrix []Vector

// Backend converts text into numeric vectors for similarity comparison.
//
// Vectorize embeds the entire corpus in one call. For the lexical variant
// this also fits the vocabulary, so a corpus rebuild is always a full
// re-vectorization; the interface deliberately has no incremental method.
// VectorizeQuery embeds a single query text against the state left by the
// most recent Vectorize call.
type Backend interface {
	Kind() Kind

	// Fingerprint identifies backend kind + model + schema revision. A
	// persisted snapshot whose fingerprint differs from the active
	// backend's is unusable and forces a rebuild.
	Fingerprint() string

	Vectorize(ctx context.Context, texts []string) (Matrix, error)
	VectorizeQuery(ctx context.Context, text string) (Vector, error)

	Close() error
}

// Cosine computes cosine similarity between two vectors, clamped to [0, 1].
// Mismatched dimensions or a zero-norm input yield 0.
func Cosine(a, b Vector) float64 {
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

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// ComputeHash returns the hex-encoded SHA-256 hash of the text, used as a
// cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Cache is an LRU cache for computed vectors, keyed by content hash.
type Cache struct {
	lru *lru.Cache[string, Vector]
}

// NewCache creates a cache holding up to size vectors.
func NewCache(size int) *Cache {
	c, err := lru.New[string, Vector](size)
	if err != nil {
		// Only reachable with a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Cache{lru: c}
}

// Get retrieves a cached vector by content hash.
func (c *Cache) Get(hash string) (Vector, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(hash)
}

// Set stores a vector under its content hash.
func (c *Cache) Set(hash string, v Vector) {
	if c == nil {
		return
	}
	c.lru.Add(hash, v)
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func l2Normalize(v Vector) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= inv
	}
}
