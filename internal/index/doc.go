// Package index implements the semantic index: the corpus of extracted
// code fragments, their embedding vectors, similarity queries and
// crash-safe persistence.
//
// # Consistency
//
// A single read/write lock guards the fragment list and the vector
// matrix. Update holds the write lock across the per-file fragment
// replacement, the full-corpus re-vectorization and the matrix swap, so a
// concurrent Query (read lock) always sees one generation. Row i of the
// matrix always corresponds to fragment i.
//
// # Updates
//
// An update is a per-file replacement: all fragments of a file path named
// by an incoming FileRecord are dropped before its new fragments are
// appended, so no stale fragment of a changed file ever survives. Every
// update re-vectorizes the whole corpus with the active backend — the
// lexical vectorizer's vocabulary depends on the full corpus, and the
// uniform rebuild keeps the contract identical across backend variants.
//
// # Persistence
//
// Save writes a versioned JSON snapshot (fragments, vectors, backend
// fingerprint, corpus size) with a write-temp-then-rename sequence. Load
// discards a missing, corrupt, version-incompatible or
// fingerprint-mismatched snapshot and starts empty with a logged warning;
// it never fails the process.
package index
