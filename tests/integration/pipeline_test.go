package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greenantix/llmdiver/internal/embedder"
	"github.com/greenantix/llmdiver/internal/extractor"
	"github.com/greenantix/llmdiver/internal/index"
	"github.com/greenantix/llmdiver/pkg/types"
)

// PipelineTestSuite drives a dump through extraction, indexing, query and
// snapshot recovery with the real components wired together.
type PipelineTestSuite struct {
	suite.Suite
	ctx          context.Context
	dump         string
	snapshotPath string
	extractor    *extractor.Extractor
	index        *index.SemanticIndex
}

// SetupSuite runs once before all tests
func (s *PipelineTestSuite) SetupSuite() {
	s.ctx = context.Background()

	wd, err := os.Getwd()
	s.Require().NoError(err)
	fixture := filepath.Join(filepath.Dir(wd), "testdata", "fixtures", "payments_dump.md")

	data, err := os.ReadFile(fixture)
	s.Require().NoError(err, "fixture dump should exist")
	s.dump = string(data)
}

// SetupTest runs before each test
func (s *PipelineTestSuite) SetupTest() {
	s.snapshotPath = filepath.Join(s.T().TempDir(), "index.json")
	s.extractor = extractor.New(extractor.Config{})
	s.index = index.New(embedder.NewLexicalBackend(), s.snapshotPath)
}

func (s *PipelineTestSuite) TestExtractionShapesFromDump() {
	records := s.extractor.Extract(s.dump)
	s.Require().Len(records, 4)

	byPath := make(map[string]types.FileRecord, len(records))
	for _, rec := range records {
		byPath[rec.FilePath] = rec
	}

	stripe := byPath["payments/stripe_client.py"]
	s.Equal("python", stripe.Language)
	s.Require().Len(stripe.Fragments, 1)
	s.Equal(types.FragmentFunction, stripe.Fragments[0].FragmentType)

	invoice := byPath["billing/invoice.js"]
	s.Equal("javascript", invoice.Language)
	s.Require().Len(invoice.Fragments, 2)
	s.Equal(types.FragmentFunction, invoice.Fragments[0].FragmentType)
	s.Equal(types.FragmentClass, invoice.Fragments[1].FragmentType)
	s.Equal(1, invoice.ComplexitySignals.TODOCount)

	// A section without a classification table still reports its size.
	notes := byPath["docs/NOTES.md"]
	s.Empty(notes.Fragments)
	s.Equal(1, notes.LineCount)
}

func (s *PipelineTestSuite) TestIndexAndQueryAcrossFiles() {
	records := s.extractor.Extract(s.dump)
	s.Require().NoError(s.index.Update(s.ctx, records))
	s.Equal(4, s.index.Size())

	// The stripe charge function should surface its braintree twin.
	var query types.CodeFragment
	for _, rec := range records {
		if rec.FilePath == "payments/stripe_client.py" {
			query = rec.Fragments[0]
		}
	}
	s.Require().NotEmpty(query.Excerpt)

	matches, err := s.index.Query(s.ctx, []types.CodeFragment{query}, 5, 0.3)
	s.Require().NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal("payments/braintree_client.py", matches[0].FilePath)
	s.Greater(matches[0].Similarity, 0.3)

	for _, m := range matches {
		s.NotEqual(query.FilePath, m.FilePath, "query file must be excluded")
	}
}

func (s *PipelineTestSuite) TestUpdateReplacesChangedFile() {
	records := s.extractor.Extract(s.dump)
	s.Require().NoError(s.index.Update(s.ctx, records))
	before := s.index.Size()

	rewritten := "## File: payments/stripe_client.py\n```\ndef charge_card(token):\n    return legacy_charge(token)\n```\n"
	s.Require().NoError(s.index.Update(s.ctx, s.extractor.Extract(rewritten)))

	s.Equal(before, s.index.Size(), "one fragment replaced one fragment")
	stats := s.index.Stats()
	s.Equal(before, stats.CorpusSize)
}

func (s *PipelineTestSuite) TestSnapshotSurvivesRestart() {
	records := s.extractor.Extract(s.dump)
	s.Require().NoError(s.index.Update(s.ctx, records))
	s.Require().NoError(s.index.Save())

	reloaded := index.New(embedder.NewLexicalBackend(), s.snapshotPath)
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal(s.index.Size(), reloaded.Size())

	// Queries against the reloaded index behave like the original.
	query := types.CodeFragment{
		ID:           types.FragmentID("(query)", 1, 1, "def charge_customer(token, amount_cents, currency):"),
		FilePath:     "(query)",
		FragmentType: types.FragmentFunction,
		Excerpt:      "def charge_customer(token, amount_cents, currency):\n    payload = build_charge_payload(token, amount_cents, currency)",
		StartLine:    1,
		EndLine:      1,
	}
	matches, err := reloaded.Query(s.ctx, []types.CodeFragment{query}, 5, 0.3)
	s.Require().NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal("payments/braintree_client.py", matches[0].FilePath)
}

func (s *PipelineTestSuite) TestSnapshotWithDifferentBackendStartsEmpty() {
	records := s.extractor.Extract(s.dump)
	s.Require().NoError(s.index.Update(s.ctx, records))
	s.Require().NoError(s.index.Save())

	other, err := embedder.NewSentenceBackend("minihash-256")
	s.Require().NoError(err)

	reloaded := index.New(other, s.snapshotPath)
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal(0, reloaded.Size(), "fingerprint mismatch discards the snapshot")
}

func (s *PipelineTestSuite) TestFailedUpdateKeepsPreviousGeneration() {
	backend := newMockBackend(32)
	ix := index.New(backend, filepath.Join(s.T().TempDir(), "index.json"))

	records := s.extractor.Extract(s.dump)
	s.Require().NoError(ix.Update(s.ctx, records))
	before := ix.Size()
	s.Require().Greater(before, 0)

	backend.failVectorize.Store(true)
	err := ix.Update(s.ctx, s.extractor.Extract(s.dump))
	s.Require().Error(err)
	s.Equal(before, ix.Size(), "failed update must not touch the served corpus")

	// The retained generation still answers queries.
	var query types.CodeFragment
	for _, rec := range records {
		if rec.FilePath == "payments/stripe_client.py" {
			query = rec.Fragments[0]
		}
	}
	_, qerr := ix.Query(s.ctx, []types.CodeFragment{query}, 5, 0.1)
	s.Require().NoError(qerr)
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
