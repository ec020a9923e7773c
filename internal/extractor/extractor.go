package extractor

import (
	"log"
	"strings"

	"github.com/greenantix/llmdiver/pkg/types"
)

const (
	// DefaultExcerptLines bounds the fragment preview fed to the
	// embedding backend. Full fragment bodies are never stored.
	DefaultExcerptLines = 3

	// DefaultLongFragmentThreshold is the line count above which a
	// function block counts as a complexity signal.
	DefaultLongFragmentThreshold = 50

	fileMarker = "## File: "
	fencePre   = "```"
)

// Config contains configuration for the extractor
type Config struct {
	ExcerptLines          int // Lines of each fragment kept as its excerpt (default: 3)
	LongFragmentThreshold int // Function line count that flags a long fragment (default: 50)
}

// Extractor turns one aggregated source dump into per-file records of
// typed, located code fragments using per-language line-classification
// tables.
type Extractor struct {
	excerptLines  int
	longThreshold int
}

// New creates a new Extractor instance. Zero config values fall back to
// defaults.
func New(cfg Config) *Extractor {
	if cfg.ExcerptLines <= 0 {
		cfg.ExcerptLines = DefaultExcerptLines
	}
	if cfg.LongFragmentThreshold <= 0 {
		cfg.LongFragmentThreshold = DefaultLongFragmentThreshold
	}
	return &Extractor{
		excerptLines:  cfg.ExcerptLines,
		longThreshold: cfg.LongFragmentThreshold,
	}
}

// Extract parses an aggregated dump into FileRecords, one per file
// section, in document order. A malformed section is skipped with a logged
// warning; the remaining sections still extract.
func (e *Extractor) Extract(doc string) []types.FileRecord {
	lines := strings.Split(doc, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		// A trailing newline is a terminator, not an extra line
		lines = lines[:n-1]
	}
	records := make([]types.FileRecord, 0)

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], fileMarker) {
			i++
			continue
		}

		path := strings.TrimSpace(strings.TrimPrefix(lines[i], fileMarker))
		i++
		if path == "" {
			log.Printf("[extractor] skipping section with empty file path")
			continue
		}

		// The fence line follows the marker, possibly after blank lines.
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) || !strings.HasPrefix(lines[i], fencePre) {
			log.Printf("[extractor] skipping %s: missing content fence", path)
			continue
		}
		tag := strings.TrimPrefix(lines[i], fencePre)
		i++

		// Content runs to the closing fence. An unterminated block is
		// closed at the next file marker or end of document.
		start := i
		for i < len(lines) &&
			strings.TrimSpace(lines[i]) != fencePre &&
			!strings.HasPrefix(lines[i], fileMarker) {
			i++
		}
		content := lines[start:i]
		if i < len(lines) && strings.TrimSpace(lines[i]) == fencePre {
			i++
		}

		records = append(records, e.scanFile(path, inferLanguage(tag, path), content))
	}

	return records
}

// openBlock tracks the current classification block while scanning a file.
type openBlock struct {
	class     lineClass
	startLine int // 1-based
	lines     []string
}

// scanFile classifies a file's lines and emits one fragment per closed
// function or class block.
func (e *Extractor) scanFile(path, language string, lines []string) types.FileRecord {
	rec := types.FileRecord{
		FilePath:  path,
		Language:  language,
		LineCount: len(lines),
		Fragments: make([]types.CodeFragment, 0),
	}

	rules := languageRules[language]

	var block *openBlock
	closeBlock := func() {
		if block == nil {
			return
		}
		if frag, ok := e.emit(path, language, block); ok {
			rec.Fragments = append(rec.Fragments, frag)
		}
		if block.class == classFunction && len(block.lines) > e.longThreshold {
			rec.ComplexitySignals.LongFragmentCount++
		}
		block = nil
	}

	for i, line := range lines {
		if strings.Contains(line, "TODO") || strings.Contains(line, "FIXME") {
			rec.ComplexitySignals.TODOCount++
		}
		if rules == nil {
			continue
		}

		class, classified := classify(rules, line)
		if !classified {
			// Unclassified body text accumulates into the open block
			if block != nil {
				block.lines = append(block.lines, line)
			}
			continue
		}

		if block != nil && block.class == class {
			block.lines = append(block.lines, line)
			continue
		}

		closeBlock()
		block = &openBlock{class: class, startLine: i + 1, lines: []string{line}}
	}

	// An unterminated block at end of file is closed and emitted with
	// whatever lines were accumulated.
	closeBlock()

	return rec
}

// emit converts a closed block into a fragment. Only function and class
// blocks become fragments; the excerpt is the first excerptLines lines of
// the block.
func (e *Extractor) emit(path, language string, block *openBlock) (types.CodeFragment, bool) {
	var fragType types.FragmentType
	switch block.class {
	case classFunction:
		fragType = types.FragmentFunction
	case classClass:
		fragType = types.FragmentClass
	default:
		return types.CodeFragment{}, false
	}

	preview := block.lines
	if len(preview) > e.excerptLines {
		preview = preview[:e.excerptLines]
	}
	excerpt := strings.TrimRight(strings.Join(preview, "\n"), "\n\t ")
	if excerpt == "" {
		return types.CodeFragment{}, false
	}

	endLine := block.startLine + len(block.lines) - 1
	return types.CodeFragment{
		ID:           types.FragmentID(path, block.startLine, endLine, excerpt),
		FilePath:     path,
		FragmentType: fragType,
		Language:     language,
		Excerpt:      excerpt,
		StartLine:    block.startLine,
		EndLine:      endLine,
	}, true
}
