package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/greenantix/llmdiver/internal/embedder"
	"github.com/greenantix/llmdiver/pkg/types"
)

// SnapshotVersion identifies the on-disk snapshot schema.
const SnapshotVersion = 1

type snapshotFragment struct {
	ID           string `json:"id"`
	FilePath     string `json:"file_path"`
	FragmentType string `json:"fragment_type"`
	Language     string `json:"language"`
	Excerpt      string `json:"excerpt"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
}

type snapshot struct {
	Version            int                `json:"version"`
	BackendFingerprint string             `json:"backend_fingerprint"`
	CorpusSize         int                `json:"corpus_size"`
	Fragments          []snapshotFragment `json:"fragments"`
	Vectors            [][]float32        `json:"vectors"`
}

// Save writes the current index state to the snapshot path via a
// write-temp-then-rename sequence, so a crash mid-write never leaves a
// half-written snapshot behind.
func (ix *SemanticIndex) Save() error {
	if ix.path == "" {
		return nil
	}

	ix.mu.RLock()
	snap := snapshot{
		Version:            SnapshotVersion,
		BackendFingerprint: ix.fingerprint,
		CorpusSize:         len(ix.fragments),
		Fragments:          make([]snapshotFragment, len(ix.fragments)),
		Vectors:            make([][]float32, len(ix.vectors)),
	}
	for i := range ix.fragments {
		f := &ix.fragments[i]
		snap.Fragments[i] = snapshotFragment{
			ID:           f.ID,
			FilePath:     f.FilePath,
			FragmentType: string(f.FragmentType),
			Language:     f.Language,
			Excerpt:      f.Excerpt,
			StartLine:    f.StartLine,
			EndLine:      f.EndLine,
		}
	}
	for i, row := range ix.vectors {
		snap.Vectors[i] = row
	}
	ix.mu.RUnlock()

	data, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(ix.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod snapshot: %w", err)
	}

	if err := os.Rename(tmpName, ix.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load restores the index from its snapshot path. A missing file starts
// the index empty; an unreadable, corrupt, schema-incompatible or
// fingerprint-mismatched snapshot is discarded with a logged warning and
// the index starts empty rather than failing the process.
func (ix *SemanticIndex) Load(ctx context.Context) error {
	if ix.path == "" {
		return nil
	}

	data, err := os.ReadFile(ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Printf("[index] snapshot unreadable, starting empty: %v", err)
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[index] snapshot corrupt, starting empty: %v", err)
		return nil
	}

	if snap.Version != SnapshotVersion {
		log.Printf("[index] snapshot version %d incompatible with %d, starting empty", snap.Version, SnapshotVersion)
		return nil
	}
	if snap.BackendFingerprint != ix.backend.Fingerprint() {
		log.Printf("[index] snapshot fingerprint %q does not match active backend %q, starting empty",
			snap.BackendFingerprint, ix.backend.Fingerprint())
		return nil
	}
	if snap.CorpusSize != len(snap.Fragments) || len(snap.Vectors) != len(snap.Fragments) {
		log.Printf("[index] snapshot inconsistent (corpus_size=%d fragments=%d vectors=%d), starting empty",
			snap.CorpusSize, len(snap.Fragments), len(snap.Vectors))
		return nil
	}

	fragments := make([]types.CodeFragment, len(snap.Fragments))
	for i, f := range snap.Fragments {
		fragments[i] = types.CodeFragment{
			ID:           f.ID,
			FilePath:     f.FilePath,
			FragmentType: types.FragmentType(f.FragmentType),
			Language:     f.Language,
			Excerpt:      f.Excerpt,
			StartLine:    f.StartLine,
			EndLine:      f.EndLine,
		}
	}

	vectors := make(embedder.Matrix, len(snap.Vectors))
	for i, row := range snap.Vectors {
		vectors[i] = row
	}

	// The lexical vocabulary is corpus-fitted and not persisted; refit
	// over the restored fragments. The fit is deterministic, so it
	// reproduces the stored matrix.
	if ix.backend.Kind() == embedder.KindLexical {
		excerpts := make([]string, len(fragments))
		for i := range fragments {
			excerpts[i] = fragments[i].Excerpt
		}
		refit, err := ix.backend.Vectorize(ctx, excerpts)
		if err != nil {
			log.Printf("[index] snapshot refit failed, starting empty: %v", err)
			return nil
		}
		vectors = refit
	}

	ix.mu.Lock()
	ix.fragments = fragments
	ix.vectors = vectors
	ix.fingerprint = snap.BackendFingerprint
	ix.mu.Unlock()

	log.Printf("[index] restored snapshot: %d fragments (%s)", len(fragments), snap.BackendFingerprint)
	return nil
}
