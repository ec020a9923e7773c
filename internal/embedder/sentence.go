package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Known sentence-embedding model references and their dimensions.
var sentenceModels = map[string]int{
	"minihash-256": 256,
	"minihash-512": 512,
}

// DefaultSentenceModel is used when no model_ref is configured.
const DefaultSentenceModel = "minihash-256"

// SentenceBackend is an in-process sentence-embedding model: the quality /
// latency middle ground between the dense service and the lexical
// vectorizer. It embeds text by hashing token and token-bigram features
// into a fixed-dimension space, so vectors are comparable across corpora
// without a fitting step.
type SentenceBackend struct {
	model string
	dim   int
}

// NewSentenceBackend creates a sentence embedder for the given model
// reference. An unknown reference is an initialization error and advances
// the fallback chain.
func NewSentenceBackend(modelRef string) (*SentenceBackend, error) {
	if modelRef == "" {
		modelRef = DefaultSentenceModel
	}

	dim, ok := sentenceModels[modelRef]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelRef)
	}

	return &SentenceBackend{model: modelRef, dim: dim}, nil
}

func (s *SentenceBackend) Kind() Kind { return KindSentence }

func (s *SentenceBackend) Fingerprint() string {
	return fmt.Sprintf("sentence/%s/v1", s.model)
}

func (s *SentenceBackend) Vectorize(ctx context.Context, texts []string) (Matrix, error) {
	matrix := make(Matrix, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matrix[i] = s.embed(t)
	}
	return matrix, nil
}

func (s *SentenceBackend) VectorizeQuery(ctx context.Context, text string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	return s.embed(text), nil
}

func (s *SentenceBackend) Close() error { return nil }

// embed hashes unigram and bigram token features into a fixed-dimension
// vector and L2-normalizes it.
func (s *SentenceBackend) embed(text string) Vector {
	v := make(Vector, s.dim)
	tokens := tokenize(text)

	for i, tok := range tokens {
		v[s.bucket(tok)]++
		if i+1 < len(tokens) {
			v[s.bucket(tok+" "+tokens[i+1])]++
		}
	}

	l2Normalize(v)
	return v
}

func (s *SentenceBackend) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(s.dim))
}
