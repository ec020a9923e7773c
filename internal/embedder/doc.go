// Package embedder converts code fragment text into numeric vectors for
// similarity comparison.
//
// Three backend variants implement the Backend interface, forming a
// fallback-preference chain:
//
//  1. service — a dense neural embedding service reached over HTTP
//  2. sentence — an in-process sentence-embedding model
//  3. lexical — a TF-IDF frequency vectorizer (guaranteed terminal fallback)
//
// # Backend Selection
//
// NewChain attempts backends from most- to least-preferred at startup; the
// first one whose initialization succeeds is adopted for the lifetime of
// the process. The lexical vectorizer never fails to initialize, so the
// chain always terminates:
//
//	backend, err := embedder.NewChain(ctx, embedder.Config{
//	    PreferenceOrder: []embedder.Kind{embedder.KindService, embedder.KindLexical},
//	    ServiceURL:      "http://localhost:11434",
//	    ModelRef:        "nomic-embed-text",
//	})
//
// There is no hot-swap: once chosen, the backend is fixed.
//
// # Vectorization Contract
//
// Vectorize embeds an entire corpus in one call. The lexical variant fits
// its vocabulary over that corpus, so any rebuild is a full
// re-vectorization — the interface has no incremental method, keeping the
// contract uniform across variants:
//
//	matrix, err := backend.Vectorize(ctx, excerpts)
//	queryVec, err := backend.VectorizeQuery(ctx, "def refresh_session(token):")
//
// # Fingerprints
//
// Each backend reports a fingerprint (kind + model + schema revision). The
// index persists it alongside vectors; a snapshot whose fingerprint differs
// from the active backend is discarded on load rather than queried with
// incomparable vectors.
//
// # Caching
//
// The service backend keeps an LRU cache of vectors keyed by content hash,
// so repeated corpus rebuilds only pay for texts that actually changed.
package embedder
