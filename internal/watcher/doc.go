// Package watcher observes project roots for file changes.
//
// One watcher runs per configured project. It registers the project tree
// recursively with fsnotify (skipping VCS, vendor and cache directories),
// picks up newly created directories, and forwards every
// create/modify/delete event to its EventSink — in practice the
// scheduler, which owns debouncing and trigger-pattern filtering. The
// watch goroutine is purely event-producing and never blocks on CPU work.
package watcher
