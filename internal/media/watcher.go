package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the watcher waits for a burst of file
// events to end before reporting a change.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher reports changes to the media below a set of roots. Bursts of
// events are coalesced into one onChange call.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	delay     time.Duration
	onChange  func()
	logger    LoggerFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// NewWatcher starts watching every directory below roots.
func NewWatcher(roots []string, delay time.Duration, onChange func(), logger LoggerFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	w := &Watcher{
		fsWatcher: fsWatcher,
		delay:     delay,
		onChange:  onChange,
		logger:    logger,
		done:      make(chan struct{}),
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			logf(logger, "Not watching %s: %v", root, err)
		}
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && isHiddenDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			logf(w.logger, "failed to add directory %s to watcher: %v", p, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logf(w.logger, "Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logf(w.logger, "Not watching %s: %v", event.Name, err)
			}
			w.schedule()
			return
		}
	}
	// removed or renamed directories have no extension and are reported too
	if Classify(event.Name) != KindNone || filepath.Ext(event.Name) == "" {
		w.schedule()
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.timer = nil
	w.mu.Unlock()
	if !stopped && w.onChange != nil {
		w.onChange()
	}
}

// Close stops watching. Pending change notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	<-w.done
	return err
}
