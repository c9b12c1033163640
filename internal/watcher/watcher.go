// Package watcher reports debounced changes to the view and model files a
// preview session is bound to.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/tether/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change seen on a file.
type Op int

const (
	Created Op = iota
	Modified
	Removed
	Renamed
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Change is one file change. ModTime and Size are zero when the file no
// longer exists.
type Change struct {
	Path    string
	Op      Op
	ModTime time.Time
	Size    int64
}

// Filter reports whether a path is of interest.
type Filter func(path string) bool

// Handler receives a debounced batch holding one change per path.
type Handler func(changes []Change) error

// Watcher collects fsnotify events and hands them to its handlers once no
// new event has arrived for the debounce delay.
type Watcher struct {
	fs     *fsnotify.Watcher
	delay  time.Duration
	logger logging.Logger

	mu       sync.RWMutex
	filters  []Filter
	handlers []Handler

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. A nil logger discards output.
func New(delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		fs:     fs,
		delay:  delay,
		logger: logger.WithComponent("watcher"),
		done:   make(chan struct{}),
	}, nil
}

// Filter adds a filter. A change is reported only when every filter
// accepts its path.
func (w *Watcher) Filter(f Filter) {
	w.mu.Lock()
	w.filters = append(w.filters, f)
	w.mu.Unlock()
}

// Handle adds a handler. Handlers run in order on the watcher goroutine.
func (w *Watcher) Handle(h Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Add watches a file or directory.
func (w *Watcher) Add(path string) error {
	if path == "" {
		return fmt.Errorf("invalid path: empty")
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("invalid path: directory traversal in %s", path)
	}
	return w.fs.Add(clean)
}

// WatchFiles watches the directories holding files and reports changes to
// those files only, so a file an editor replaces by renaming stays watched.
// Empty names are skipped.
func (w *Watcher) WatchFiles(files ...string) error {
	var targets []string
	dirs := make(map[string]bool)
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}
		targets = append(targets, abs)
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}
	w.Filter(FilesFilter(targets...))
	return nil
}

// Start runs the watcher in the background until ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	go w.run(ctx)
	return nil
}

// Stop releases the fsnotify watcher. Pending changes are dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	pending := make(map[string]Change)
	timer := time.NewTimer(w.delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.done:
			timer.Stop()
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.accept(ev.Name) {
				continue
			}
			pending[ev.Name] = toChange(ev)
			timer.Reset(w.delay)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			w.dispatch(ctx, batch(pending))
			clear(pending)
		}
	}
}

func (w *Watcher) accept(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, f := range w.filters {
		if !f(path) {
			return false
		}
	}
	return true
}

func (w *Watcher) dispatch(ctx context.Context, changes []Change) {
	w.mu.RLock()
	handlers := w.handlers
	w.mu.RUnlock()

	w.logger.Debug(ctx, "files changed", "count", len(changes))
	for _, h := range handlers {
		if err := h(changes); err != nil {
			w.logger.Error(ctx, err, "change handler failed", "changes", len(changes))
		}
	}
}

func toChange(ev fsnotify.Event) Change {
	c := Change{Path: ev.Name, Op: Modified}
	switch {
	case ev.Has(fsnotify.Create):
		c.Op = Created
	case ev.Has(fsnotify.Remove):
		c.Op = Removed
	case ev.Has(fsnotify.Rename):
		c.Op = Renamed
	}
	if info, err := os.Stat(ev.Name); err == nil {
		c.ModTime = info.ModTime()
		c.Size = info.Size()
	}
	return c
}

// batch orders the pending changes by path.
func batch(pending map[string]Change) []Change {
	out := make([]Change, 0, len(pending))
	for _, c := range pending {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// FilesFilter accepts only the given paths, compared in absolute form.
func FilesFilter(paths ...string) Filter {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			set[abs] = true
		}
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && set[abs]
	}
}

// NoGitFilter rejects paths inside a .git directory.
func NoGitFilter(path string) bool {
	slashed := filepath.ToSlash(path)
	return !strings.HasPrefix(slashed, ".git/") && !strings.Contains(slashed, "/.git/")
}

// NoTempFilter rejects editor swap, lock and backup files.
func NoTempFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasSuffix(base, "~") &&
		!strings.HasSuffix(base, ".swp") &&
		!strings.HasPrefix(base, ".#")
}
