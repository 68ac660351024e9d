// Package watcher observes filesystem activity under configured application
// data paths and records it as usage touches.
//
// Not every application is started through `idlewipe launch`. The watcher
// closes that gap: when files under an app's cleanup paths change, the app
// is evidently in use, and the touch pushes its idle clock back. Events are
// coalesced per application and flushed to the store on a timer to keep
// write load low.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/idlewipe/internal/store"
)

// defaultFlushInterval is how often coalesced touches are written out.
const defaultFlushInterval = 30 * time.Second

// Watcher tracks activity under registered application paths.
type Watcher struct {
	store *store.Store
	m     *Matcher
	fsw   *fsnotify.Watcher
	log   *slog.Logger

	// FlushInterval overrides the batch flush cadence (tests use a short
	// one). Zero means defaultFlushInterval.
	FlushInterval time.Duration

	// Now is the clock source. Defaults to time.Now.
	Now func() time.Time

	mu      sync.Mutex
	pending map[string]*store.Touch // latest activity per app since flush

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over the apps registered in m, recording touches
// into st.
func New(st *store.Store, m *Matcher, log *slog.Logger) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		store:   st,
		m:       m,
		fsw:     fsw,
		log:     log,
		pending: make(map[string]*store.Touch),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start registers all existing roots with the filesystem watcher and begins
// processing events. Roots that don't exist yet are skipped; they get picked
// up if created later under a watched parent, or on the next daemon start.
func (w *Watcher) Start() error {
	watched := 0
	for _, root := range w.m.Roots() {
		if err := w.addTree(root); err != nil {
			w.log.Warn("cannot watch path, skipping", "path", root, "error", err)
			continue
		}
		watched++
	}
	w.log.Info("watching application data paths", "paths", watched)

	w.wg.Add(2)
	go w.eventLoop()
	go w.flushLoop()

	return nil
}

// Stop halts event processing and flushes any pending touches.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.fsw.Close()
	w.wg.Wait()
	w.flush()
	return nil
}

// addTree watches root and every directory below it. fsnotify watches are
// not recursive, so the tree is walked once here; directories created
// later are added from their Create events.
func (w *Watcher) addTree(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watcher error", "error", err)
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	// New directories under a watched root need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.log.Warn("cannot watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	appID, ok := w.m.Match(event.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	w.pending[appID] = &store.Touch{
		AppID:     appID,
		Source:    event.Name,
		Timestamp: w.now(),
	}
	w.mu.Unlock()
}

func (w *Watcher) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush()
		case <-w.stopCh:
			return
		}
	}
}

// flush writes one coalesced touch per active app and clears the pending
// set. A store failure keeps the touches for the next attempt.
func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]*store.Touch)
	w.mu.Unlock()

	for appID, touch := range pending {
		if err := w.store.InsertTouch(touch); err != nil {
			w.log.Warn("failed to record usage touch", "app", appID, "error", err)
			w.mu.Lock()
			if _, exists := w.pending[appID]; !exists {
				w.pending[appID] = touch
			}
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) flushInterval() time.Duration {
	if w.FlushInterval > 0 {
		return w.FlushInterval
	}
	return defaultFlushInterval
}

func (w *Watcher) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
