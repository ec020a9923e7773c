package types

// Match represents a single similarity-search result with its provenance.
// Callers format matches into whatever context block they need; this core
// never produces prose.
type Match struct {
	// Provenance
	FilePath     string
	StartLine    int
	EndLine      int
	FragmentType FragmentType
	Language     string

	// Scoring — cosine similarity in [0, 1], higher is closer
	Similarity float64

	// Content preview used for the comparison
	Excerpt string
}

// Validate checks if the match is well formed
func (m *Match) Validate() error {
	if m.FilePath == "" {
		return ErrMissingFilePath
	}

	if m.Similarity < 0 || m.Similarity > 1 {
		return ErrInvalidSimilarity
	}

	if m.StartLine <= 0 || m.EndLine < m.StartLine {
		return ErrInvalidLineRange
	}

	return nil
}
