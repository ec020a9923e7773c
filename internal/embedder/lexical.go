package embedder

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode"
)

// LexicalFingerprint identifies the TF-IDF vectorizer schema.
const LexicalFingerprint = "lexical/tfidf/v1"

// LexicalBackend is a TF-IDF frequency vectorizer. Its vocabulary and IDF
// weights are fitted over the entire corpus on every Vectorize call, so
// query vectors are only comparable to the matrix produced by the most
// recent fit. Initialization cannot fail; this is the guaranteed terminal
// fallback of every preference chain.
type LexicalBackend struct {
	mu     sync.RWMutex
	vocab  map[string]int
	idf    []float32
	fitted bool
}

// NewLexicalBackend creates an unfitted TF-IDF vectorizer.
func NewLexicalBackend() *LexicalBackend {
	return &LexicalBackend{}
}

func (l *LexicalBackend) Kind() Kind { return KindLexical }

func (l *LexicalBackend) Fingerprint() string { return LexicalFingerprint }

// Vectorize fits the vocabulary and IDF weights over texts and returns one
// L2-normalized TF-IDF row per text.
func (l *LexicalBackend) Vectorize(ctx context.Context, texts []string) (Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := make([][]string, len(texts))
	for i, t := range texts {
		docs[i] = tokenize(t)
	}

	vocab := make(map[string]int)
	df := make([]int, 0, 64)
	for _, tokens := range docs {
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
				df = append(df, 0)
			}
			df[vocab[tok]]++
		}
	}

	n := float64(len(docs))
	idf := make([]float32, len(df))
	for i, d := range df {
		idf[i] = float32(math.Log(1+n/float64(1+d)) + 1)
	}

	matrix := make(Matrix, len(docs))
	for i, tokens := range docs {
		matrix[i] = tfidfRow(tokens, vocab, idf)
	}

	l.mu.Lock()
	l.vocab = vocab
	l.idf = idf
	l.fitted = true
	l.mu.Unlock()

	return matrix, nil
}

// VectorizeQuery embeds one text against the vocabulary from the most
// recent Vectorize call.
func (l *LexicalBackend) VectorizeQuery(ctx context.Context, text string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.fitted {
		return nil, ErrNotFitted
	}

	return tfidfRow(tokenize(text), l.vocab, l.idf), nil
}

func (l *LexicalBackend) Close() error { return nil }

func tfidfRow(tokens []string, vocab map[string]int, idf []float32) Vector {
	row := make(Vector, len(vocab))
	if len(tokens) == 0 {
		return row
	}

	counts := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		if col, ok := vocab[tok]; ok {
			counts[col]++
		}
	}

	total := float32(len(tokens))
	for col, count := range counts {
		row[col] = float32(count) / total * idf[col]
	}

	l2Normalize(row)
	return row
}

// tokenize splits text into lowercase alphanumeric terms.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
