// Package types provides shared type definitions for the LLMdiver semantic
// index.
//
// This package defines the domain types passed between the extractor, the
// index and external callers: code fragments, per-file extraction records,
// and similarity-search matches.
//
// # Core Types
//
// CodeFragment represents a located function or class extracted from an
// aggregated source dump:
//
//	fragment := types.CodeFragment{
//	    FilePath:     "pkg/auth/session.py",
//	    FragmentType: types.FragmentFunction,
//	    Language:     "python",
//	    Excerpt:      "def refresh_session(token):\n    ...",
//	    StartLine:    42,
//	    EndLine:      71,
//	}
//
// FileRecord is the full extraction result for one file. It is always a
// complete replacement: the index drops every fragment previously known for
// the record's file path before adopting the new ones.
//
// Match is a similarity-search result. Similarity is cosine similarity
// normalized to [0, 1], with higher values indicating closer matches.
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := fragment.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
