package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llmdiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
index_path: /tmp/idx.json
max_concurrent_analyses: 4
embedding:
  preference_order: [service, lexical]
  model_ref: nomic-embed-text
  service_url: http://localhost:11434
  similarity_threshold: 0.6
  max_results: 8
extraction:
  excerpt_lines: 5
  long_fragment_threshold: 80
projects:
  - name: backend
    root_path: /srv/backend
    dump_path: /srv/backend/.llmdiver/dump.md
    trigger_patterns: ["*.py", "*.go"]
    debounce_window: 750ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/idx.json", cfg.IndexPath)
	assert.Equal(t, 4, cfg.MaxConcurrentAnalyses)
	assert.Equal(t, []string{"service", "lexical"}, cfg.Embedding.PreferenceOrder)
	assert.Equal(t, 0.6, cfg.Embedding.SimilarityThreshold)
	assert.Equal(t, 8, cfg.Embedding.MaxResults)
	assert.Equal(t, 5, cfg.Extraction.ExcerptLines)

	require.Len(t, cfg.Projects, 1)
	p := cfg.Projects[0]
	assert.Equal(t, "backend", p.Name)
	assert.Equal(t, 750*time.Millisecond, p.DebounceWindow)
	assert.Equal(t, []string{"*.py", "*.go"}, p.TriggerPatterns)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxConcurrentAnalyses, cfg.MaxConcurrentAnalyses)
	assert.Equal(t, DefaultSimilarityThreshold, cfg.Embedding.SimilarityThreshold)
	assert.Equal(t, DefaultMaxResults, cfg.Embedding.MaxResults)
	assert.Empty(t, cfg.Projects)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "projects: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultsForInvalidValues(t *testing.T) {
	path := writeConfig(t, `
max_concurrent_analyses: -1
embedding:
  similarity_threshold: 7.5
  max_results: 0
projects:
  - name: p
    root_path: /srv/p
    debounce_window: not-a-duration
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxConcurrentAnalyses, cfg.MaxConcurrentAnalyses)
	assert.Equal(t, DefaultSimilarityThreshold, cfg.Embedding.SimilarityThreshold)
	assert.Equal(t, DefaultMaxResults, cfg.Embedding.MaxResults)
	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, DefaultDebounceWindow, cfg.Projects[0].DebounceWindow)
}

func TestProjectWithoutRootDropped(t *testing.T) {
	path := writeConfig(t, `
projects:
  - name: empty
  - root_path: /srv/keep
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, "/srv/keep", cfg.Projects[0].RootPath)
	assert.Equal(t, "keep", cfg.Projects[0].Name, "name defaults to the root's base name")
}

func TestEnvOverridesFileValues(t *testing.T) {
	path := writeConfig(t, `
index_path: /tmp/from-file.json
embedding:
  service_url: http://file:1234
  preference_order: [service]
`)

	t.Setenv("LLMDIVER_INDEX_PATH", "/tmp/from-env.json")
	t.Setenv("LLMDIVER_SERVICE_URL", "http://env:5678")
	t.Setenv("LLMDIVER_BACKENDS", "sentence,lexical")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-env.json", cfg.IndexPath)
	assert.Equal(t, "http://env:5678", cfg.Embedding.ServiceURL)
	assert.Equal(t, []string{"sentence", "lexical"}, cfg.Embedding.PreferenceOrder)
}

func TestBadGlobPatternDropped(t *testing.T) {
	path := writeConfig(t, `
projects:
  - root_path: /srv/p
    trigger_patterns: ["*.py", "[unclosed"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, []string{"*.py"}, cfg.Projects[0].TriggerPatterns)
}
