// Package watcher turns directory-level file system notifications into a
// stream of change events for a single target file.
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

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/logging"
)

// DefaultQueueSize bounds the event queue between the watcher goroutine and
// its consumer.
const DefaultQueueSize = 64

// ChangeEvent represents a change to the target file
type ChangeEvent struct {
	Type EventType
	Path string
	// Time is when the notification was observed.
	Time    time.Time
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// DirFilter reports whether a directory should be watched
type DirFilter func(path string) bool

// FileWatcher watches the parent directory tree of one target file
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	target     string
	root       string
	dirFilters []DirFilter
	queueSize  int
	logger     logging.Logger

	events    chan ChangeEvent
	errs      chan error
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(fw *FileWatcher) { fw.logger = logger }
}

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(fw *FileWatcher) {
		if n > 0 {
			fw.queueSize = n
		}
	}
}

// New starts watching the directory containing target. It fails before any
// goroutine starts when the directory cannot be watched.
func New(target string, opts ...Option) (*FileWatcher, error) {
	canonical, err := Canonicalize(target)
	if err != nil {
		return nil, jerrors.NewWatchError(jerrors.CodeWatchSetup, "cannot resolve watch target", err).
			WithPath(target)
	}

	fw := &FileWatcher{
		target:     canonical,
		root:       filepath.Dir(canonical),
		dirFilters: []DirFilter{NoGitFilter, NoBuildOutputFilter},
		queueSize:  DefaultQueueSize,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(fw)
	}
	fw.logger = fw.logger.WithComponent("watcher")

	fw.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, jerrors.NewWatchError(jerrors.CodeWatchSetup, "cannot create file watcher", err)
	}

	if err := fw.watcher.Add(fw.root); err != nil {
		_ = fw.watcher.Close()
		return nil, jerrors.NewWatchError(jerrors.CodeWatchSetup, "cannot watch directory", err).
			WithPath(fw.root)
	}
	fw.addRecursive(fw.root)

	fw.events = make(chan ChangeEvent, fw.queueSize)
	fw.errs = make(chan error, 1)
	fw.done = make(chan struct{})

	fw.wg.Add(1)
	go fw.watchLoop()

	return fw, nil
}

// Canonicalize returns the absolute path of target with symlinks in its
// directory resolved. The file itself need not exist.
func Canonicalize(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// Target returns the canonical path being watched.
func (fw *FileWatcher) Target() string { return fw.target }

// Events returns the queue of change events for the target.
func (fw *FileWatcher) Events() <-chan ChangeEvent { return fw.events }

// Err returns a channel that receives at most one fatal watcher error.
func (fw *FileWatcher) Err() <-chan error { return fw.errs }

// Close stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Close() error {
	fw.closeOnce.Do(func() {
		close(fw.done)
		fw.wg.Wait()
		fw.closeErr = fw.watcher.Close()
	})
	return fw.closeErr
}

// addRecursive watches every subdirectory of root that passes the filters.
// Subdirectories that cannot be watched are logged and skipped.
func (fw *FileWatcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fw.logger.Debug(context.Background(), "skipping unreadable path", "path", path, "error", err.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == fw.root {
			return nil
		}
		if !fw.allowDir(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn(context.Background(), err, "skipping unwatchable directory", "path", path)
			return filepath.SkipDir
		}
		return nil
	})
}

func (fw *FileWatcher) allowDir(path string) bool {
	for _, filter := range fw.dirFilters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				fw.fail(jerrors.NewWatchError(jerrors.CodeWatchDisconnected, "file notifications stopped", nil))
				return
			}
			if !fw.handleFsnotifyEvent(event) {
				return
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				fw.fail(jerrors.NewWatchError(jerrors.CodeWatchDisconnected, "file notifications stopped", nil))
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// the target may have changed among the lost events
				fw.logger.Warn(context.Background(), err, "file notifications overflowed")
				if !fw.send(ChangeEvent{Type: EventTypeModified, Path: fw.target, Time: time.Now()}) {
					return
				}
				continue
			}
			fw.fail(jerrors.NewWatchError(jerrors.CodeWatchDisconnected, "file watcher failed", err).
				WithPath(fw.root))
			return
		}
	}
}

func (fw *FileWatcher) fail(err error) {
	select {
	case fw.errs <- err:
	default:
	}
}

// handleFsnotifyEvent reports false once the watcher has failed.
func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) bool {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) && path != fw.target {
		if info, err := os.Stat(path); err == nil && info.IsDir() && fw.allowDir(path) {
			if err := fw.watcher.Add(path); err == nil {
				fw.addRecursive(path)
			}
		}
	}

	if path != fw.target {
		return true
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		// chmod only
		return true
	}

	changeEvent := ChangeEvent{
		Type: eventType,
		Path: path,
		Time: time.Now(),
	}
	if info, err := os.Stat(path); err == nil {
		changeEvent.ModTime = info.ModTime()
		changeEvent.Size = info.Size()
	}

	return fw.send(changeEvent)
}

// send never blocks. A full queue means the consumer stopped polling, which
// is fatal: the error is reported on Err and send returns false.
func (fw *FileWatcher) send(event ChangeEvent) bool {
	select {
	case fw.events <- event:
		return true
	default:
		fw.logger.Warn(context.Background(), nil, "event queue full", "type", event.Type.String(), "capacity", cap(fw.events))
		fw.fail(jerrors.NewWatchError(jerrors.CodeWatchQueueFull, "file change queue full", nil).WithPath(fw.target))
		return false
	}
}

// NoGitFilter skips version control metadata directories.
func NoGitFilter(path string) bool {
	base := filepath.Base(path)
	return base != ".git" && base != ".hg" && base != ".jj"
}

// NoBuildOutputFilter skips build output directories, which churn during
// verification.
func NoBuildOutputFilter(path string) bool {
	base := filepath.Base(path)
	return base != "target" && !strings.HasPrefix(base, "journey-")
}
