package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenantix/llmdiver/internal/config"
	"github.com/greenantix/llmdiver/internal/embedder"
)

const sampleDump = "## File: auth/login.py\n" +
	"```\n" +
	"import os\n" +
	"def check_password(user, password):\n" +
	"    hashed = hash_value(password)\n" +
	"    return hashed == user.password_hash\n" +
	"```\n" +
	"## File: admin/login.py\n" +
	"```\n" +
	"import os\n" +
	"def verify_password(admin, password):\n" +
	"    hashed = hash_value(password)\n" +
	"    return hashed == admin.password_hash\n" +
	"```\n"

type memorySource struct {
	dumps map[string]string
}

func (m *memorySource) Read(ctx context.Context, project config.Project) (string, error) {
	return m.dumps[project.Name], nil
}

func lexicalConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.json")
	cfg.Embedding.PreferenceOrder = []string{"lexical"}
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, source DumpSource) *IndexService {
	t.Helper()
	svc, err := New(context.Background(), cfg, source)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.backend.Close() })
	return svc
}

func TestIndexDumpAndQueryText(t *testing.T) {
	svc := newTestService(t, lexicalConfig(t), &memorySource{})

	files, fragments, err := svc.IndexDump(context.Background(), sampleDump)
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, 2, fragments)

	matches, err := svc.QueryText(context.Background(),
		"def check_password(user, password):\n    hashed = hash_value(password)", 5, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "auth/login.py", matches[0].FilePath)
}

func TestIndexDumpWritesSnapshot(t *testing.T) {
	cfg := lexicalConfig(t)
	svc := newTestService(t, cfg, &memorySource{})

	_, _, err := svc.IndexDump(context.Background(), sampleDump)
	require.NoError(t, err)

	info, err := os.Stat(cfg.IndexPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestQueryTextEmptyString(t *testing.T) {
	svc := newTestService(t, lexicalConfig(t), &memorySource{})
	matches, err := svc.QueryText(context.Background(), "", 5, 0.4)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestQueryAppliesConfiguredDefaults(t *testing.T) {
	cfg := lexicalConfig(t)
	cfg.Embedding.MaxResults = 1
	svc := newTestService(t, cfg, &memorySource{})

	_, _, err := svc.IndexDump(context.Background(), sampleDump+
		"## File: legacy/login.py\n```\ndef old_password_check(user, password):\n    hashed = hash_value(password)\n    return hashed == user.password_hash\n```\n")
	require.NoError(t, err)

	// k <= 0 falls back to MaxResults, threshold <= 0 to the configured one.
	matches, err := svc.QueryText(context.Background(),
		"def check_password(user, password):\n    hashed = hash_value(password)", 0, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 1)
}

func TestBackendKindHonorsPreference(t *testing.T) {
	svc := newTestService(t, lexicalConfig(t), &memorySource{})
	assert.Equal(t, embedder.KindLexical, svc.BackendKind())
}

func TestWatchPipelineEndToEnd(t *testing.T) {
	root := t.TempDir()
	cfg := lexicalConfig(t)
	cfg.Projects = []config.Project{{
		Name:            "demo",
		RootPath:        root,
		TriggerPatterns: []string{"*.py"},
		DebounceWindow:  50 * time.Millisecond,
	}}

	source := &memorySource{dumps: map[string]string{"demo": sampleDump}}
	svc := newTestService(t, cfg, source)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "login.py"), []byte("def f():\n    pass\n"), 0o644))

	deadline := time.Now().Add(5 * time.Second)
	for svc.index.Size() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("index never populated, size %d", svc.index.Size())
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 2, svc.index.Size())

	stats := svc.Stats()
	assert.Equal(t, 2, stats.CorpusSize)
	assert.Equal(t, "lexical/tfidf/v1", stats.BackendFingerprint)
}

func TestStopPersistsIndex(t *testing.T) {
	cfg := lexicalConfig(t)
	svc := newTestService(t, cfg, &memorySource{})
	require.NoError(t, svc.Start())

	_, _, err := svc.IndexDump(context.Background(), sampleDump)
	require.NoError(t, err)
	svc.Stop()

	// A fresh service over the same snapshot path restores the corpus.
	restored := newTestService(t, cfg, &memorySource{})
	assert.Equal(t, 2, restored.index.Size())
}

func TestFileDumpSourceFallsBackToDefaultPath(t *testing.T) {
	root := t.TempDir()
	dumpPath := filepath.Join(root, filepath.FromSlash(DefaultDumpName))
	require.NoError(t, os.MkdirAll(filepath.Dir(dumpPath), 0o755))
	require.NoError(t, os.WriteFile(dumpPath, []byte(sampleDump), 0o644))

	source := &FileDumpSource{}
	dump, err := source.Read(context.Background(), config.Project{Name: "demo", RootPath: root})
	require.NoError(t, err)
	assert.Equal(t, sampleDump, dump)
}

func TestFileDumpSourceExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))

	source := &FileDumpSource{}
	dump, err := source.Read(context.Background(), config.Project{Name: "demo", DumpPath: path})
	require.NoError(t, err)
	assert.Equal(t, sampleDump, dump)
}
