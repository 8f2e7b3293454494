// Package watcher reports when a set of files has changed and then stayed
// quiet for a debounce interval.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports a file that changed and has since settled.
type Event struct {
	Path      string
	Timestamp time.Time
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher monitors individual files. Each file is watched through its parent
// directory so that files created, replaced or removed after Start are still
// seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	targets   map[string]struct{}
	interval  time.Duration

	// path -> time of the most recent unsettled change
	state   map[string]time.Time
	stateMu sync.Mutex

	events chan Event
	errors chan error

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher for paths with the given debounce interval.
func New(paths []string, interval time.Duration) (*Watcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("watcher: debounce interval must be positive, got %s", interval)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		targets:   make(map[string]struct{}, len(paths)),
		interval:  interval,
		state:     make(map[string]time.Time),
		events:    make(chan Event, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.paths = append(w.paths, abs)
		w.targets[abs] = struct{}{}
	}
	return w, nil
}

// Events returns the channel of settled changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching. Every watched file's directory must exist.
func (w *Watcher) Start() error {
	dirs := make(map[string]struct{})
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
	return nil
}

// Stop shuts the watcher down and closes its channels. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
		close(w.events)
		close(w.errors)
	})
	return err
}

// WatchedPaths returns the absolute paths being watched.
func (w *Watcher) WatchedPaths() []string {
	return w.paths
}

// Pending returns the number of changed files that have not settled yet.
func (w *Watcher) Pending() int {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return len(w.state)
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if _, ok := w.targets[path]; !ok {
				continue
			}

			w.stateMu.Lock()
			w.state[path] = time.Now()
			w.stateMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := w.interval / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.flushSettled(now)
		}
	}
}

// flushSettled emits an event for every file whose last change is older
// than the debounce interval.
func (w *Watcher) flushSettled(now time.Time) {
	threshold := now.Add(-w.interval)

	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	for path, last := range w.state {
		if last.After(threshold) {
			continue
		}
		select {
		case w.events <- Event{Path: path, Timestamp: now}:
			delete(w.state, path)
		default:
			// Channel full; retry on the next tick.
		}
	}
}
