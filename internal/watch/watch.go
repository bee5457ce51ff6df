// Package watch re-syncs scripts when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// SyncFunc syncs one changed file.
type SyncFunc func(ctx context.Context, path string) error

// Watcher owns one subscription per watched file. Parent directories are
// watched so that editors which save by rename are still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	syncFn   SyncFunc
	debounce time.Duration
	enabled  func() bool

	mu      sync.Mutex
	files   map[string]*time.Timer // watched file -> pending debounce timer
	dirs    map[string]int         // watched directory -> file count
	closed  bool
	locks   keyedMutex
	pending sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is synced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithEnabled gates syncing; changes are ignored while fn returns false.
func WithEnabled(fn func() bool) Option {
	return func(w *Watcher) {
		w.enabled = fn
	}
}

// New creates a Watcher that calls fn for changed files once Run is called.
func New(fn SyncFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		syncFn:   fn,
		debounce: DefaultDebounce,
		enabled:  func() bool { return true },
		files:    make(map[string]*time.Timer),
		dirs:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch subscribes to changes of a script. It returns false when the file
// is already watched.
func (w *Watcher) Watch(path string) (bool, error) {
	if !model.IsScriptPath(path) {
		return false, &errs.ValidationError{Field: "file", Message: fmt.Sprintf("only %s files can be watched: %s", model.ScriptExtension, path)}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, &errs.FileSystemError{Op: "resolve", Path: path, Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, errors.New("watcher closed")
	}
	if _, ok := w.files[abs]; ok {
		return false, nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return false, &errs.FileSystemError{Op: "watch", Path: dir, Err: err}
		}
	}
	w.dirs[dir]++
	w.files[abs] = nil
	logging.Debug("watching", logging.Path(abs))
	return true, nil
}

// Unwatch drops the subscription for path. It returns false when the file
// was not watched.
func (w *Watcher) Unwatch(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	timer, ok := w.files[abs]
	if !ok {
		return false
	}
	if timer != nil && timer.Stop() {
		w.pending.Done()
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
	return true
}

// Paths returns the watched files, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx, filepath.Clean(ev.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error", logging.Err(err))
		}
	}
}

// schedule (re)starts the debounce timer for a watched file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	timer, ok := w.files[path]
	if !ok || w.closed {
		return
	}
	if timer != nil && timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.files[path] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.fire(ctx, path)
	})
}

// fire syncs path. Syncs of the same file never overlap.
func (w *Watcher) fire(ctx context.Context, path string) {
	if !w.enabled() {
		logging.Debug("change ignored, auto upload disabled", logging.Path(path))
		return
	}
	unlock := w.locks.Lock(path)
	defer unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.syncFn(ctx, path); err != nil {
		logging.Warn("sync after change failed", logging.Path(path), logging.Err(err))
	}
}

// Close stops watching and waits for running syncs to finish.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for p, timer := range w.files {
		if timer != nil && timer.Stop() {
			w.pending.Done()
		}
		w.files[p] = nil
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.pending.Wait()
	return err
}

// keyedMutex serializes work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
