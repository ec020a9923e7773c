package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// JobState tracks an analysis job through its lifecycle.
type JobState string

const (
	StatePending   JobState = "pending"
	StateScheduled JobState = "scheduled"
	StateRunning   JobState = "running"
	StateDone      JobState = "done"
	StateFailed    JobState = "failed"
)

// AnalysisJob is one debounced indexing run for a project. Jobs live only
// in memory for the duration of one debounce cycle and are never retried:
// a fresh file event naturally creates a new job.
type AnalysisJob struct {
	ID         string
	ProjectID  string
	State      JobState
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

func newJob(projectID string) *AnalysisJob {
	return &AnalysisJob{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		State:     StatePending,
	}
}
