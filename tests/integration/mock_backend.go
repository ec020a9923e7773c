package integration

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sync/atomic"

	"github.com/greenantix/llmdiver/internal/embedder"
)

// mockBackend produces deterministic vectors from content hashes, like the
// production backends but without any fitting step. It can be told to fail
// so recovery paths are reachable from the outside.
type mockBackend struct {
	dim           int
	failVectorize atomic.Bool
	vectorizeCnt  atomic.Int64
}

var errMockDown = errors.New("mock backend down")

func newMockBackend(dim int) *mockBackend {
	return &mockBackend{dim: dim}
}

func (m *mockBackend) Kind() embedder.Kind { return embedder.KindSentence }

func (m *mockBackend) Fingerprint() string { return "sentence/mock/v1" }

func (m *mockBackend) Vectorize(ctx context.Context, texts []string) (embedder.Matrix, error) {
	if m.failVectorize.Load() {
		return nil, errMockDown
	}
	m.vectorizeCnt.Add(1)

	matrix := make(embedder.Matrix, len(texts))
	for i, text := range texts {
		matrix[i] = m.embed(text)
	}
	return matrix, nil
}

func (m *mockBackend) VectorizeQuery(ctx context.Context, text string) (embedder.Vector, error) {
	return m.embed(text), nil
}

func (m *mockBackend) Close() error { return nil }

// embed hashes the text into a unit vector; identical texts always map to
// identical vectors.
func (m *mockBackend) embed(text string) embedder.Vector {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make(embedder.Vector, m.dim)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>33)) / float32(math.MaxInt32)
		norm += float64(vec[i]) * float64(vec[i])
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
