package device

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/setupwizard/internal/logger"
)

const debounceInterval = 150 * time.Millisecond

// Watcher reports changes to a profile file made by other processes (an
// account added from a shell, a SIM inserted). It watches the parent
// directory because Save replaces the file by rename.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()

	mu    sync.Mutex
	timer *time.Timer

	done    chan struct{}
	stopped chan struct{}
}

// NewWatcher creates a watcher for path. onChange runs on the watcher's
// goroutine and must only hand the signal off to the owner's event loop.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  w,
		path:     filepath.Clean(path),
		onChange: onChange,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start adds the watch and starts the event loop.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.watcher.Close()
		return err
	}
	go w.eventLoop()
	logger.Debug("device: watching %s", w.path)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	<-w.stopped

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("device: watcher error: %v", err)
		}
	}
}

// schedule coalesces bursts of events into one callback.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceInterval, w.onChange)
}
