package index

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/greenantix/llmdiver/internal/embedder"
	"github.com/greenantix/llmdiver/pkg/types"
)

// SemanticIndex owns the corpus of code fragments and their embedding
// vectors. One read/write lock guards both: Update replaces the fragment
// list and the vector matrix inside a single critical section, so a
// concurrent Query can never observe them from two different generations.
type SemanticIndex struct {
	mu      sync.RWMutex
	backend embedder.Backend
	path    string

	// Guarded by mu. vectors row i corresponds to fragments[i]; the two
	// are always replaced together.
	fragments   []types.CodeFragment
	vectors     embedder.Matrix
	fingerprint string
}

// Stats describes the current index contents.
type Stats struct {
	CorpusSize          int
	BackendFingerprint  string
	FragmentsByLanguage map[string]int
}

// New creates an empty index bound to a backend and a snapshot path.
func New(backend embedder.Backend, snapshotPath string) *SemanticIndex {
	return &SemanticIndex{
		backend:     backend,
		path:        snapshotPath,
		fingerprint: backend.Fingerprint(),
	}
}

// Update applies file records to the corpus: for each record, every
// existing fragment of that file path is removed and the record's
// fragments are appended, then the entire corpus is re-vectorized with the
// active backend and the matrix and fingerprint are replaced as one unit.
// On a vectorization failure the previous generation stays intact.
func (ix *SemanticIndex) Update(ctx context.Context, records []types.FileRecord) error {
	if len(records) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	replaced := make(map[string]bool, len(records))
	for i := range records {
		replaced[records[i].FilePath] = true
	}

	next := make([]types.CodeFragment, 0, len(ix.fragments))
	for _, frag := range ix.fragments {
		if !replaced[frag.FilePath] {
			next = append(next, frag)
		}
	}
	for i := range records {
		next = append(next, records[i].Fragments...)
	}

	excerpts := make([]string, len(next))
	for i := range next {
		excerpts[i] = next[i].Excerpt
	}

	matrix, err := ix.backend.Vectorize(ctx, excerpts)
	if err != nil {
		return fmt.Errorf("vectorize corpus: %w", err)
	}
	if len(matrix) != len(next) {
		return fmt.Errorf("vectorize corpus: got %d rows for %d fragments", len(matrix), len(next))
	}

	ix.fragments = next
	ix.vectors = matrix
	ix.fingerprint = ix.backend.Fingerprint()
	return nil
}

// Query vectorizes each query fragment, ranks the corpus by cosine
// similarity, excludes the query fragment's own file, filters by
// threshold, keeps at most one match per distinct file (the highest
// similarity wins) and truncates to k. An empty index or query list
// yields an empty result, never an error; a backend failure for one query
// fragment is logged and that fragment contributes no matches.
func (ix *SemanticIndex) Query(ctx context.Context, queryFragments []types.CodeFragment, k int, threshold float64) ([]types.Match, error) {
	if k <= 0 {
		return []types.Match{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.fragments) == 0 || len(queryFragments) == 0 {
		return []types.Match{}, nil
	}

	// Best match per distinct file across all query fragments
	best := make(map[string]types.Match)

	for qi := range queryFragments {
		qf := &queryFragments[qi]

		vec, err := ix.backend.VectorizeQuery(ctx, qf.Excerpt)
		if err != nil {
			log.Printf("[index] query fragment %s: %v", qf.FilePath, err)
			continue
		}

		for i := range ix.fragments {
			frag := &ix.fragments[i]
			if frag.FilePath == qf.FilePath {
				continue
			}

			sim := embedder.Cosine(vec, ix.vectors[i])
			if sim < threshold {
				continue
			}

			prev, seen := best[frag.FilePath]
			if !seen || sim > prev.Similarity {
				best[frag.FilePath] = types.Match{
					FilePath:     frag.FilePath,
					StartLine:    frag.StartLine,
					EndLine:      frag.EndLine,
					FragmentType: frag.FragmentType,
					Language:     frag.Language,
					Similarity:   sim,
					Excerpt:      frag.Excerpt,
				}
			}
		}
	}

	matches := make([]types.Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].FilePath < matches[j].FilePath
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Stats reports the current corpus size, fingerprint and per-language
// fragment counts.
func (ix *SemanticIndex) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	byLang := make(map[string]int)
	for i := range ix.fragments {
		byLang[ix.fragments[i].Language]++
	}
	return Stats{
		CorpusSize:          len(ix.fragments),
		BackendFingerprint:  ix.fingerprint,
		FragmentsByLanguage: byLang,
	}
}

// Size returns the number of fragments in the corpus.
func (ix *SemanticIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.fragments)
}
