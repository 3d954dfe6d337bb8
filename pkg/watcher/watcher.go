// Package watcher monitors a tutorial directory tree and reports changes,
// so watch mode can rebuild the outline. It uses fsnotify where the
// platform delivers reliable events and falls back to periodic scanning on
// remote filesystems.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default scan interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrRootRemoved    = errors.New("watched tutorial root was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the scan interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked when the tree changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// Watcher monitors a directory tree using fsnotify with polling fallback.
type Watcher struct {
	root             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool
	forcePollEnv     bool
	fsType           FilesystemType

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	lastSig     treeSignature
	rootSeen    bool

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a new watcher for the tutorial tree rooted at root.
func NewWatcher(root string, opts ...Option) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:             absRoot,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the tree for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	// Reset per-start state.
	w.useFallback = false
	w.forcePollEnv = false
	w.fsType = FSTypeUnknown

	if envBool("TUTOR_FORCE_POLLING") || envBool("TUTOR_FORCE_POLL") {
		w.forcePollEnv = true
	}

	w.fsType = detectFilesystemTypeFunc(w.root)
	if isRemoteFilesystem(w.fsType) {
		w.useFallback = true
	}

	if w.forcePoll || w.forcePollEnv {
		w.useFallback = true
	}

	// Take the initial tree signature.
	sig, err := scanTree(w.root)
	switch {
	case err == nil:
		w.lastSig = sig
		w.rootSeen = true
	case os.IsPermission(err):
		return ErrPermission
	default:
		// The root might not exist yet, that's okay.
		w.lastSig = treeSignature{}
		w.rootSeen = false
	}

	// Try to use fsnotify
	if !w.useFallback {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err := addTree(fsw, w.root); err != nil {
				fsw.Close()
				w.useFallback = true
			} else {
				w.fsWatcher = fsw
				go w.watchFsnotify()
			}
		} else {
			w.useFallback = true
		}
	}

	// Start polling as fallback or primary
	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// Stop stops watching the tree.
// Note: The changeCh channel is intentionally NOT closed here. Closing it
// would race with notifyChange(); a goroutine blocked on Changed() is
// cleaned up by process termination instead.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives when the tree changes.
// This is an alternative to using the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Root returns the watched tree root.
func (w *Watcher) Root() string {
	return w.root
}

// FilesystemType returns the best-effort filesystem classification for the watched root.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the scan interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// treeSignature summarizes a directory tree cheaply enough to poll: entry
// count, total file size and the newest modification time.
type treeSignature struct {
	entries int
	size    int64
	newest  time.Time
}

func scanTree(root string) (treeSignature, error) {
	var sig treeSignature
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable entries don't abort the scan.
			return nil
		}
		sig.entries++
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			sig.size += info.Size()
		}
		if info.ModTime().After(sig.newest) {
			sig.newest = info.ModTime()
		}
		return nil
	})
	return sig, err
}

// addTree registers root and every subdirectory with the fsnotify watcher.
// Unreadable subdirectories are skipped.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify() {
	// Capture references to avoid a race with Stop() setting fsWatcher to nil
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	fsw := w.fsWatcher
	events := fsw.Events
	errs := fsw.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			if event.Name == w.root && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onError(ErrRootRemoved)
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				// New subdirectories must join the watch before their
				// contents start changing.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(fsw, event.Name)
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// watchPolling monitors using periodic tree scans.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			if _, err := os.Stat(w.root); err != nil {
				if os.IsNotExist(err) {
					// Only report if the tree existed before
					w.mu.Lock()
					had := w.rootSeen
					w.rootSeen = false
					w.mu.Unlock()
					if had {
						w.onError(ErrRootRemoved)
					}
				} else if os.IsPermission(err) {
					w.onError(ErrPermission)
				} else {
					w.onError(err)
				}
				continue
			}

			sig, err := scanTree(w.root)
			if err != nil {
				w.onError(err)
				continue
			}

			w.mu.Lock()
			changed := sig != w.lastSig
			if changed {
				w.lastSig = sig
			}
			w.rootSeen = true
			w.mu.Unlock()

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Don't notify after Stop(). Best-effort; the remaining race window is
	// harmless because callbacks are idempotent.
	if !started {
		return
	}

	w.onChange()

	// Non-blocking send to change channel
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
