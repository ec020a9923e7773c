// Package scheduler decides when a project is re-indexed.
//
// File events flow in from the watch layer; the scheduler filters them
// through the project's trigger patterns and coalesces bursts with a
// trailing-edge debounce: the job fires one debounce window after the
// last qualifying event, not the first. Per project, at most one job is
// pending at a time.
//
// The per-project state machine:
//
//	Idle --event--> Pending(deadline = now + window)
//	Pending --event--> Pending (deadline pushed forward)
//	Pending --deadline--> Scheduled (job enqueued)
//	Scheduled --worker--> Running
//	Running --done/failed--> Idle
//
// Events arriving while a job is Running start a new Pending cycle
// immediately rather than waiting for the running job, so changes made
// during a long-running index are never lost.
//
// A single fixed-size worker pool drains the shared FIFO queue; this is
// the only place extraction and vectorization run. A job that fails is
// logged and dropped — no retry, no crash of the worker. A fresh file
// event naturally creates a new job.
package scheduler
