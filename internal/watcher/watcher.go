package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/greenantix/llmdiver/internal/config"
)

// EventSink receives file events produced by watchers. The scheduler
// implements this; OnFileEvent must be cheap, it runs on the watch
// goroutine.
type EventSink interface {
	OnFileEvent(projectID, path string)
}

// Directories never worth watching.
var ignoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".llmdiver":    true,
}

// Watcher observes one project root recursively and forwards
// create/modify/delete events to its sink. It does no CPU work itself.
type Watcher struct {
	project config.Project
	sink    EventSink
	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// New creates a watcher for one project root.
func New(project config.Project, sink EventSink) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		project: project,
		sink:    sink,
		watcher: fsw,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}, nil
}

// Watch registers the project tree and starts the event goroutine.
func (w *Watcher) Watch() error {
	if err := w.addRecursive(w.project.RootPath); err != nil {
		return err
	}

	w.started = true
	go w.processEvents()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	if w.started {
		<-w.done
	}
	return err
}

// addRecursive adds a directory and all its subdirectories to the watch
// list, skipping ignored directories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !info.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		if ignoredDirs[name] || (strings.HasPrefix(name, ".") && path != dir) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			// Non-fatal, continue with the rest of the tree
			log.Printf("[watcher] %s: cannot watch %s: %v", w.project.Name, path, err)
		}
		return nil
	})
}

// processEvents forwards filesystem events to the sink.
func (w *Watcher) processEvents() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.sink.OnFileEvent(w.project.Name, event.Name)
			}

			// New directories join the watch list
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] %s: %v", w.project.Name, err)
		}
	}
}
