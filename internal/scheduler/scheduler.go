package scheduler

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greenantix/llmdiver/internal/config"
)

// queueCapacity bounds the shared job queue. Jobs queue FIFO across all
// projects when the worker pool is saturated.
const queueCapacity = 64

// Runner executes one analysis job: pull the aggregated dump, extract,
// update the index. It runs only on worker goroutines, never on the watch
// path.
type Runner func(ctx context.Context, job *AnalysisJob) error

// Scheduler coalesces file events into debounced analysis jobs and drains
// them with a fixed-size worker pool. Debounce is trailing-edge: a job
// fires one debounce window after the last qualifying event, and a burst
// of events collapses into exactly one job. Events that arrive while a
// project's job is running start a new pending cycle immediately, so
// changes made during a long-running index are never lost.
type Scheduler struct {
	run     Runner
	workers int
	queue   chan *AnalysisJob

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group

	mu       sync.Mutex
	projects map[string]*projectState
	stopped  bool
}

// Per-project debounce state. Guarded by Scheduler.mu.
type projectState struct {
	project config.Project
	pending bool
	running bool
	timer   *time.Timer
}

// New creates a scheduler for the given projects. workers is the global
// concurrency bound shared across all projects.
func New(projects []config.Project, workers int, run Runner) *Scheduler {
	if workers <= 0 {
		workers = config.DefaultMaxConcurrentAnalyses
	}

	states := make(map[string]*projectState, len(projects))
	for _, p := range projects {
		states[p.Name] = &projectState{project: p}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		run:      run,
		workers:  workers,
		queue:    make(chan *AnalysisJob, queueCapacity),
		ctx:      ctx,
		cancel:   cancel,
		projects: states,
	}
}

// Start launches the worker pool.
func (s *Scheduler) Start() {
	s.g, _ = errgroup.WithContext(s.ctx)
	for i := 0; i < s.workers; i++ {
		s.g.Go(s.worker)
	}
}

// Stop prevents new jobs from being scheduled and waits for in-flight
// jobs to finish. Queued jobs that have not started are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, st := range s.projects {
		if st.timer != nil {
			st.timer.Stop()
		}
		st.pending = false
	}
	s.mu.Unlock()

	s.cancel()
	if s.g != nil {
		_ = s.g.Wait()
	}
}

// OnFileEvent is called by the watch layer for every create/modify/delete
// under a watched root. It must never block on CPU work: it only updates
// debounce state.
func (s *Scheduler) OnFileEvent(projectID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	st, ok := s.projects[projectID]
	if !ok {
		return
	}

	if !matchesAny(st.project.TriggerPatterns, s.relativize(st, path)) {
		return
	}

	if st.pending {
		// Trailing edge: every qualifying event pushes the deadline
		st.timer.Reset(st.project.DebounceWindow)
		return
	}

	st.pending = true
	st.timer = time.AfterFunc(st.project.DebounceWindow, func() {
		s.fire(projectID)
	})
}

// fire moves a project from pending to scheduled and enqueues its job.
func (s *Scheduler) fire(projectID string) {
	s.mu.Lock()
	st, ok := s.projects[projectID]
	if !ok || s.stopped || !st.pending {
		s.mu.Unlock()
		return
	}
	st.pending = false
	s.mu.Unlock()

	job := newJob(projectID)
	job.State = StateScheduled
	job.EnqueuedAt = time.Now()

	select {
	case s.queue <- job:
	case <-s.ctx.Done():
	}
}

// worker drains the shared queue. A job that fails is logged and dropped;
// the worker immediately pulls the next job.
func (s *Scheduler) worker() error {
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case job := <-s.queue:
			s.execute(job)
		}
	}
}

func (s *Scheduler) execute(job *AnalysisJob) {
	s.setRunning(job.ProjectID, true)
	job.State = StateRunning
	job.StartedAt = time.Now()

	err := s.run(s.ctx, job)

	job.FinishedAt = time.Now()
	s.setRunning(job.ProjectID, false)

	if err != nil {
		job.State = StateFailed
		job.Err = err
		log.Printf("[scheduler] job %s for %s failed: %v", job.ID, job.ProjectID, err)
		return
	}
	job.State = StateDone
}

func (s *Scheduler) setRunning(projectID string, running bool) {
	s.mu.Lock()
	if st, ok := s.projects[projectID]; ok {
		st.running = running
	}
	s.mu.Unlock()
}

// relativize maps an absolute event path onto the project root so trigger
// patterns see project-relative paths.
func (s *Scheduler) relativize(st *projectState, path string) string {
	if rel, err := filepath.Rel(st.project.RootPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
