// Package controller drives the curriculum: it owns the exercise set, runs
// verifications, persists completion, and implements the interactive watch
// loop that merges file changes and keypresses into state transitions.
//
// All state is owned by the goroutine calling into the Controller. The only
// other goroutines are the ones behind the EventSource and key channel, and
// they communicate exclusively through channels.
package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/logging"
	"github.com/conneroisu/journey/internal/status"
	"github.com/conneroisu/journey/internal/verify"
	"github.com/conneroisu/journey/internal/watcher"
)

// DefaultPollInterval is how long the watch loop sleeps between polls.
const DefaultPollInterval = 10 * time.Millisecond

// ErrAllComplete is returned by RunOnce when no exercise is left.
var ErrAllComplete = errors.New("all exercises are complete")

// Verifier verifies one exercise.
type Verifier interface {
	Verify(ctx context.Context, ex *exercise.Exercise, basePath string) (verify.Outcome, error)
}

// EventSource is a running file watcher.
type EventSource interface {
	Events() <-chan watcher.ChangeEvent
	Err() <-chan error
	Close() error
}

// WatcherFactory starts watching path.
type WatcherFactory func(path string) (EventSource, error)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Printer renders controller output.
type Printer interface {
	Clear()
	Watching(ex *exercise.Exercise, completed, total int)
	Running(ex *exercise.Exercise)
	Verifying(ex *exercise.Exercise, initial bool)
	Outcome(ex *exercise.Exercise, outcome verify.Outcome)
	WaitingForChanges(ex *exercise.Exercise)
	AdvancePrompt(ex *exercise.Exercise)
	AllComplete(statusFile string)
	Hint(ex *exercise.Exercise)
	List(exercises []*exercise.Exercise, current int)
	Progress(i, total int, ex *exercise.Exercise)
	Summary(passed, failed, total int)
	Message(format string, args ...interface{})
}

// Summary is the result of VerifyAll.
type Summary struct {
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
	Total  int `json:"total" yaml:"total"`
}

// Controller coordinates the registry, verifier, status file and watch loop.
type Controller struct {
	set        *exercise.Set
	verifier   Verifier
	printer    Printer
	basePath   string
	statusFile string

	newWatcher   WatcherFactory
	keys         <-chan rune
	clock        Clock
	debounce     time.Duration
	pollInterval time.Duration
	logger       logging.Logger

	// state is written by the loop goroutine and may be read from others.
	state atomic.Int32
}

// Option configures a Controller.
type Option func(*Controller)

// WithBasePath sets the directory exercise paths are relative to.
func WithBasePath(path string) Option {
	return func(c *Controller) { c.basePath = path }
}

// WithStatusFile sets the status file path.
func WithStatusFile(path string) Option {
	return func(c *Controller) { c.statusFile = path }
}

// WithWatcherFactory sets how watch sessions observe their file.
func WithWatcherFactory(factory WatcherFactory) Option {
	return func(c *Controller) { c.newWatcher = factory }
}

// WithKeys sets the keypress channel used by Watch.
func WithKeys(keys <-chan rune) Option {
	return func(c *Controller) { c.keys = keys }
}

// WithClock sets the clock used for events without a timestamp.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithDebounce sets the quiescence window for file changes.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithPollInterval sets the watch loop sleep.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a controller over set.
func New(set *exercise.Set, verifier Verifier, printer Printer, opts ...Option) *Controller {
	c := &Controller{
		set:          set,
		verifier:     verifier,
		printer:      printer,
		basePath:     ".",
		statusFile:   status.DefaultFile,
		clock:        systemClock{},
		debounce:     watcher.DefaultDebounce,
		pollInterval: DefaultPollInterval,
		logger:       logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("controller")
	return c
}

// Set returns the exercise set.
func (c *Controller) Set() *exercise.Set { return c.set }

// State returns the current watch state.
func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(ctx context.Context, s State) {
	if prev := State(c.state.Swap(int32(s))); prev != s {
		c.logger.Debug(ctx, "state transition", "from", prev.String(), "to", s.String())
	}
}

// Resolve finds the named exercise, or the next incomplete one when name is
// empty.
func (c *Controller) Resolve(name string) (int, error) {
	if name == "" {
		i, ok := c.set.FindNext()
		if !ok {
			return -1, ErrAllComplete
		}
		return i, nil
	}

	i, ok := c.set.Lookup(name)
	if !ok {
		return -1, jerrors.NewValidationError(jerrors.CodeExerciseUnknown,
			fmt.Sprintf("no exercise named %q", name)).WithExercise(name)
	}
	return i, nil
}

// markPassed records a pass and persists it before anything else happens.
func (c *Controller) markPassed(ctx context.Context, i int) error {
	ex := c.set.At(i)
	if ex.Completed {
		return nil
	}
	ex.Completed = true
	c.logger.Info(ctx, "exercise completed", "exercise", ex.Name)
	return status.Save(c.set, c.statusFile)
}

// RunOnce verifies the named exercise, or the next incomplete one when name
// is empty, and persists a pass.
func (c *Controller) RunOnce(ctx context.Context, name string) (verify.Outcome, error) {
	i, err := c.Resolve(name)
	if err != nil {
		return verify.Outcome{}, err
	}
	ex := c.set.At(i)

	c.printer.Running(ex)
	outcome, err := c.verifier.Verify(ctx, ex, c.basePath)
	if err != nil {
		return verify.Outcome{}, err
	}
	c.printer.Outcome(ex, outcome)

	if outcome.Passed {
		if err := c.markPassed(ctx, i); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// VerifyAll verifies every exercise in order and saves once at the end.
// Failures never clear an earlier completion.
func (c *Controller) VerifyAll(ctx context.Context) (Summary, error) {
	summary := Summary{Total: c.set.Len()}

	for i, ex := range c.set.All() {
		c.printer.Progress(i+1, summary.Total, ex)
		outcome, err := c.verifier.Verify(ctx, ex, c.basePath)
		if err != nil {
			return summary, err
		}
		c.printer.Outcome(ex, outcome)

		if outcome.Passed {
			ex.Completed = true
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if err := status.Save(c.set, c.statusFile); err != nil {
		return summary, err
	}
	c.printer.Summary(summary.Passed, summary.Failed, summary.Total)
	return summary, nil
}

// ResetStatus deletes the status file and reports whether one existed.
func (c *Controller) ResetStatus() (bool, error) {
	return status.Reset(c.statusFile)
}

// exercisePath is the file a watch session observes.
func (c *Controller) exercisePath(ex *exercise.Exercise) string {
	return filepath.Join(c.basePath, ex.Path)
}
