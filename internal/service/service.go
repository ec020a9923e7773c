package service

import (
	"context"
	"fmt"
	"log"

	"github.com/greenantix/llmdiver/internal/config"
	"github.com/greenantix/llmdiver/internal/embedder"
	"github.com/greenantix/llmdiver/internal/extractor"
	"github.com/greenantix/llmdiver/internal/index"
	"github.com/greenantix/llmdiver/internal/scheduler"
	"github.com/greenantix/llmdiver/internal/watcher"
	"github.com/greenantix/llmdiver/pkg/types"
)

// IndexService is the explicit composition root: the embedding backend,
// extractor, semantic index, scheduler and watchers, constructed once
// with their dependencies passed in. There are no process-wide globals.
type IndexService struct {
	cfg       *config.Config
	backend   embedder.Backend
	extractor *extractor.Extractor
	index     *index.SemanticIndex
	scheduler *scheduler.Scheduler
	watchers  []*watcher.Watcher
	source    DumpSource
}

// New builds the service: backend chain, extractor, index (restored from
// its snapshot when compatible) and scheduler. Watchers start in Start.
func New(ctx context.Context, cfg *config.Config, source DumpSource) (*IndexService, error) {
	backend, err := embedder.NewChain(ctx, embedder.Config{
		PreferenceOrder: parseKinds(cfg.Embedding.PreferenceOrder),
		ModelRef:        cfg.Embedding.ModelRef,
		ServiceURL:      cfg.Embedding.ServiceURL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize embedding backend: %w", err)
	}

	ix := index.New(backend, cfg.IndexPath)
	if err := ix.Load(ctx); err != nil {
		return nil, fmt.Errorf("load index snapshot: %w", err)
	}

	svc := &IndexService{
		cfg:     cfg,
		backend: backend,
		extractor: extractor.New(extractor.Config{
			ExcerptLines:          cfg.Extraction.ExcerptLines,
			LongFragmentThreshold: cfg.Extraction.LongFragmentThreshold,
		}),
		index:  ix,
		source: source,
	}
	svc.scheduler = scheduler.New(cfg.Projects, cfg.MaxConcurrentAnalyses, svc.runJob)
	return svc, nil
}

// Start launches the worker pool and one watcher per project. A project
// whose watcher cannot start is logged and skipped; the rest keep
// working.
func (s *IndexService) Start() error {
	s.scheduler.Start()

	for _, project := range s.cfg.Projects {
		w, err := watcher.New(project, s.scheduler)
		if err != nil {
			log.Printf("[service] project %s: cannot create watcher: %v", project.Name, err)
			continue
		}
		if err := w.Watch(); err != nil {
			log.Printf("[service] project %s: cannot watch %s: %v", project.Name, project.RootPath, err)
			_ = w.Close()
			continue
		}
		log.Printf("[service] watching %s (%s)", project.Name, project.RootPath)
		s.watchers = append(s.watchers, w)
	}
	return nil
}

// Stop closes watchers, waits for in-flight jobs, persists the index and
// releases the backend.
func (s *IndexService) Stop() {
	for _, w := range s.watchers {
		_ = w.Close()
	}
	s.watchers = nil

	s.scheduler.Stop()

	if err := s.index.Save(); err != nil {
		log.Printf("[service] final snapshot save failed: %v", err)
	}
	_ = s.backend.Close()
}

// UpdateIndex applies file records to the index and persists a snapshot.
// A failed save is logged and the in-memory index retained; the next
// successful save recovers.
func (s *IndexService) UpdateIndex(ctx context.Context, records []types.FileRecord) error {
	if err := s.index.Update(ctx, records); err != nil {
		return err
	}
	if err := s.index.Save(); err != nil {
		log.Printf("[service] snapshot save failed, keeping in-memory index: %v", err)
	}
	return nil
}

// Query runs a similarity query. Non-positive k and out-of-range
// thresholds fall back to the configured defaults.
func (s *IndexService) Query(ctx context.Context, queryFragments []types.CodeFragment, k int, threshold float64) ([]types.Match, error) {
	if k <= 0 {
		k = s.cfg.Embedding.MaxResults
	}
	if threshold <= 0 || threshold > 1 {
		threshold = s.cfg.Embedding.SimilarityThreshold
	}
	return s.index.Query(ctx, queryFragments, k, threshold)
}

// QueryText wraps a raw text query into a synthetic fragment and runs it.
func (s *IndexService) QueryText(ctx context.Context, text string, k int, threshold float64) ([]types.Match, error) {
	if text == "" {
		return []types.Match{}, nil
	}
	q := types.CodeFragment{
		ID:           types.FragmentID("(query)", 1, 1, text),
		FilePath:     "(query)",
		FragmentType: types.FragmentFunction,
		Language:     "",
		Excerpt:      text,
		StartLine:    1,
		EndLine:      1,
	}
	return s.Query(ctx, []types.CodeFragment{q}, k, threshold)
}

// IndexDump extracts an aggregated dump and applies it to the index.
func (s *IndexService) IndexDump(ctx context.Context, dump string) (files, fragments int, err error) {
	records := s.extractor.Extract(dump)
	for i := range records {
		fragments += len(records[i].Fragments)
	}
	if err := s.UpdateIndex(ctx, records); err != nil {
		return 0, 0, err
	}
	return len(records), fragments, nil
}

// Stats reports current index contents.
func (s *IndexService) Stats() index.Stats {
	return s.index.Stats()
}

// BackendKind reports the embedding backend the chain settled on.
func (s *IndexService) BackendKind() embedder.Kind {
	return s.backend.Kind()
}

// runJob is the scheduler's Runner: pull the external dump, extract,
// update, persist. Runs only on worker goroutines.
func (s *IndexService) runJob(ctx context.Context, job *scheduler.AnalysisJob) error {
	project, ok := s.projectByID(job.ProjectID)
	if !ok {
		return fmt.Errorf("unknown project %q", job.ProjectID)
	}

	dump, err := s.source.Read(ctx, project)
	if err != nil {
		return err
	}

	files, fragments, err := s.IndexDump(ctx, dump)
	if err != nil {
		return err
	}

	log.Printf("[service] job %s: indexed %s (%d files, %d fragments, corpus %d)",
		job.ID, project.Name, files, fragments, s.index.Size())
	return nil
}

func (s *IndexService) projectByID(id string) (config.Project, bool) {
	for _, p := range s.cfg.Projects {
		if p.Name == id {
			return p, true
		}
	}
	return config.Project{}, false
}

// parseKinds converts configured kind names, dropping unknown entries
// with a warning. An empty result leaves the chain on its defaults.
func parseKinds(names []string) []embedder.Kind {
	kinds := make([]embedder.Kind, 0, len(names))
	for _, name := range names {
		kind, err := embedder.ParseKind(name)
		if err != nil {
			log.Printf("[service] ignoring unknown backend kind %q", name)
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}
