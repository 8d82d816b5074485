// Package watch recomputes scenario analyses when their files change on
// disk. Events debounce per path, so an editor's save burst triggers one
// recompute cycle, not five.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"dealdesk/internal/batch"
	"dealdesk/internal/logging"
)

const (
	// DefaultDebounce is how long a path must stay quiet before recompute.
	DefaultDebounce = 500 * time.Millisecond

	// settleTick is how often the debounce map is swept.
	settleTick = 100 * time.Millisecond
)

// CycleResult is one recompute: the refreshed outcome or the failure, plus
// any artifact paths written.
type CycleResult struct {
	Path    string
	Outcome *batch.Outcome
	Written []string
	Err     error
}

// Options tune a Watcher. The zero value uses the default debounce, ignores
// nothing, writes no artifacts, and reports cycles nowhere.
type Options struct {
	Debounce time.Duration

	// Ignore holds doublestar patterns matched against paths relative to the
	// watched directory. Matching files never trigger recompute.
	Ignore []string

	// Write, when non-nil, writes refreshed artifacts after each cycle.
	Write *batch.WriteOptions

	// OnCycle receives every completed cycle, failures included. It runs on
	// the watcher goroutine, so keep it quick.
	OnCycle func(CycleResult)
}

// Stats counts watcher activity.
type Stats struct {
	Events        int
	Recomputes    int
	Failures      int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher drives recompute-on-save for one scenario file or a directory of
// them. Directories are watched one level deep.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	runner      *batch.Runner
	target      string
	dir         string // directory registered with fsnotify
	only        string // non-empty: only this path triggers recompute
	opts        Options
	debounceMap map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
	running     bool
	stats       Stats
}

// New creates a Watcher over a scenario file or a directory of them.
func New(runner *batch.Runner, target string, opts Options) (*Watcher, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch target: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fsw,
		runner:      runner,
		target:      target,
		opts:        opts,
		debounceMap: make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	if info.IsDir() {
		w.dir = target
	} else {
		// fsnotify watches the parent so rename-style editor saves still
		// land as events for the target path.
		w.dir = filepath.Dir(target)
		w.only = filepath.Clean(target)
	}
	return w, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop is called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Watch("watching %s (debounce %s)", w.target, w.opts.Debounce)

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying watcher. It is safe
// to call more than once and on a watcher that never started; the watcher
// cannot be restarted afterward.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		wasRunning := w.running
		w.running = false
		w.mu.Unlock()

		if wasRunning {
			close(w.stopCh)
			<-w.doneCh
		}
		if err := w.watcher.Close(); err != nil {
			logging.Get(logging.CategoryWatch).Error("failed to close watcher: %v", err)
		}
		logging.Watch("stopped watching %s", w.target)
	})
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a snapshot of watcher activity.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// RunOnce recomputes every matching file under the target immediately. The
// CLI calls it at startup so the first results appear before any edit.
func (w *Watcher) RunOnce(ctx context.Context) error {
	if w.only != "" {
		w.recompute(ctx, w.only)
		return nil
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := filepath.Join(w.dir, e.Name())
		if w.wants(name) {
			w.recompute(ctx, name)
		}
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(settleTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watch error: %v", err)
			w.mu.Lock()
			w.stats.Failures++
			w.mu.Unlock()

		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

// handleEvent records a relevant event in the debounce map.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.wants(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	logging.Get(logging.CategoryWatch).Debug("%s event for %s", event.Op, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// wants filters events to scenario files, never this package's own output.
func (w *Watcher) wants(name string) bool {
	if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, batch.ResultSuffix) {
		return false
	}
	if w.only != "" {
		return filepath.Clean(name) == w.only
	}
	return !w.ignored(name)
}

// ignored reports whether any ignore pattern matches the path relative to
// the watched directory.
func (w *Watcher) ignored(name string) bool {
	rel, err := filepath.Rel(w.dir, name)
	if err != nil {
		rel = filepath.Base(name)
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.opts.Ignore {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// processSettled recomputes paths whose last event is past the debounce
// window.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.opts.Debounce {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(settled)
	for _, path := range settled {
		w.recompute(ctx, path)
	}
}

func (w *Watcher) recompute(ctx context.Context, path string) {
	// The file may be gone by the time its event settles.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	res := CycleResult{Path: path}
	out, err := w.runner.ExecuteFile(ctx, path)
	if err != nil {
		res.Err = err
		logging.Get(logging.CategoryWatch).Warn("%s: recompute failed: %v", path, err)
	} else {
		res.Outcome = out
		logging.Watch("%s: %s", path, out.Summary)
		if w.opts.Write != nil {
			res.Written, res.Err = batch.WriteOutcome(out, *w.opts.Write)
		}
	}

	w.mu.Lock()
	w.stats.Recomputes++
	if res.Err != nil {
		w.stats.Failures++
	}
	w.mu.Unlock()

	if w.opts.OnCycle != nil {
		w.opts.OnCycle(res)
	}
}
