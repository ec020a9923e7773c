package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FragmentType represents the structural kind of an extracted code fragment
type FragmentType string

const (
	FragmentFunction FragmentType = "function"
	FragmentClass    FragmentType = "class"
)

// CodeFragment represents a located, typed slice of source code extracted
// for indexing. Fragments are owned by the semantic index; callers receive
// copies and must not expect identity to survive a reindex of the owning file.
type CodeFragment struct {
	// Identification
	ID       string
	FilePath string

	// Classification
	FragmentType FragmentType
	Language     string

	// Content — a bounded preview of the fragment body, not the full text.
	// This is the text fed to the embedding backend.
	Excerpt string

	// Location
	StartLine int
	EndLine   int
}

// ComplexitySignals carries cheap per-file complexity heuristics collected
// during extraction.
type ComplexitySignals struct {
	TODOCount         int
	LongFragmentCount int
}

// FileRecord represents the full extraction result for one file section of
// an aggregated dump. A FileRecord is always a complete replacement for any
// prior record of the same file; records are never merged.
type FileRecord struct {
	FilePath          string
	Language          string
	LineCount         int
	Fragments         []CodeFragment
	ComplexitySignals ComplexitySignals
}

// FragmentID derives a stable identifier for a fragment from its path, span
// and excerpt. The ID changes whenever the owning file's content at that
// span changes, which is exactly the lifetime the index relies on.
func FragmentID(filePath string, startLine, endLine int, excerpt string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%d:%s", filePath, startLine, endLine, excerpt))
	return hex.EncodeToString(h[:16])
}

// Validate checks if the fragment is well formed
func (f *CodeFragment) Validate() error {
	if f.FilePath == "" {
		return ErrMissingFilePath
	}

	if f.FragmentType != FragmentFunction && f.FragmentType != FragmentClass {
		return ErrInvalidFragmentType
	}

	if f.Excerpt == "" {
		return ErrEmptyExcerpt
	}

	if f.StartLine <= 0 || f.EndLine <= 0 {
		return ErrInvalidLineRange
	}

	if f.StartLine > f.EndLine {
		return ErrInvalidLineRange
	}

	return nil
}

// Validate checks if the file record is well formed
func (r *FileRecord) Validate() error {
	if r.FilePath == "" {
		return ErrMissingFilePath
	}

	if r.LineCount < 0 {
		return ErrInvalidLineRange
	}

	for i := range r.Fragments {
		if err := r.Fragments[i].Validate(); err != nil {
			return fmt.Errorf("fragment %d: %w", i, err)
		}
	}

	return nil
}
