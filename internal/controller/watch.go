package controller

import (
	"context"
	"time"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/terminal"
	"github.com/conneroisu/journey/internal/watcher"
)

// Key bindings.
const (
	keyQuit    = 'q'
	keyHint    = 'h'
	keyList    = 'l'
	keyNext    = 'n'
	keyConfirm = 'y'
)

// session is the working state for one exercise under watch.
type session struct {
	index      int
	path       string
	lastVerify time.Time
	debouncer  *watcher.Debouncer
}

// transition is the outcome of handling one input.
type transition struct {
	state State
	// next is set when the loop must move to another exercise.
	next int
}

func stay(s State) transition { return transition{state: s, next: -1} }

// Watch runs the interactive loop starting at the first incomplete
// exercise. It returns the terminal state reached, or an error when a
// verification could not run, status could not be saved, or an input
// source failed.
func (c *Controller) Watch(ctx context.Context) (State, error) {
	if c.newWatcher == nil || c.keys == nil {
		return StateExiting, jerrors.NewInternalError(jerrors.CodeInvalidConfig,
			"watch requires a watcher factory and a key source", nil)
	}

	i, ok := c.set.FindNext()
	if !ok {
		c.setState(ctx, StateAllComplete)
		c.printer.AllComplete(c.statusFile)
		return StateAllComplete, nil
	}

	for {
		t, err := c.watchExercise(ctx, i)
		if err != nil {
			return c.State(), err
		}
		if t.state.Terminal() {
			return t.state, nil
		}
		i = t.next
	}
}

// watchExercise runs one WatchSession. It returns either a terminal state or
// the index of the exercise to watch next.
func (c *Controller) watchExercise(ctx context.Context, i int) (transition, error) {
	ex := c.set.At(i)
	path := c.exercisePath(ex)

	source, err := c.newWatcher(path)
	if err != nil {
		return stay(StateExiting), err
	}
	defer func() {
		if err := source.Close(); err != nil {
			c.logger.Warn(ctx, err, "failed to stop watcher", "path", path)
		}
	}()

	s := &session{
		index:     i,
		path:      path,
		debouncer: watcher.NewDebouncer(c.debounce),
	}
	c.logger.Info(ctx, "watching exercise", "exercise", ex.Name, "path", path)

	c.setState(ctx, StateWatching)
	c.printer.Clear()
	c.printer.Watching(ex, c.set.CompletedCount(), c.set.Len())

	t, err := c.verify(ctx, s, true)
	if err != nil || t.state.Terminal() {
		return t, err
	}
	// the entry verification counts as the last accepted change
	s.debouncer.Accept(s.lastVerify)

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for {
	drain:
		for {
			select {
			case ev, ok := <-source.Events():
				if !ok {
					return stay(StateExiting), jerrors.NewWatchError(jerrors.CodeWatchDisconnected,
						"file change queue closed", nil).WithPath(path)
				}
				if t, err = c.handleChange(ctx, s, ev); err != nil || t.state.Terminal() {
					return t, err
				}
			default:
				break drain
			}
		}

		select {
		case key, ok := <-c.keys:
			if !ok {
				return stay(StateExiting), jerrors.NewInternalError(jerrors.CodeInputClosed,
					"keyboard input closed", nil)
			}
			t = c.handleKey(ctx, s, key)
			if t.state.Terminal() || t.next >= 0 {
				return t, nil
			}
		default:
		}

		select {
		case err := <-source.Err():
			return stay(StateExiting), err
		default:
		}

		timer.Reset(c.pollInterval)
		select {
		case <-ctx.Done():
			c.setState(ctx, StateExiting)
			return stay(StateExiting), ctx.Err()
		case <-timer.C:
		}
	}
}

// handleChange verifies on a debounced change while watching. Changes seen
// at the advance prompt are dropped.
func (c *Controller) handleChange(ctx context.Context, s *session, ev watcher.ChangeEvent) (transition, error) {
	if c.State() != StateWatching {
		return stay(c.State()), nil
	}

	at := ev.Time
	if at.IsZero() {
		at = c.clock.Now()
	}
	if !s.debouncer.Accept(at) {
		c.logger.Debug(ctx, "change debounced", "path", s.path, "type", ev.Type.String(),
			"since_last_verify", at.Sub(s.lastVerify), "window", s.debouncer.Window())
		return stay(c.State()), nil
	}

	c.printer.Clear()
	c.printer.Watching(c.set.At(s.index), c.set.CompletedCount(), c.set.Len())
	return c.verify(ctx, s, false)
}

// verify runs the Verifying state and moves to the state that follows it.
func (c *Controller) verify(ctx context.Context, s *session, initial bool) (transition, error) {
	ex := c.set.At(s.index)

	c.setState(ctx, StateVerifying)
	c.printer.Verifying(ex, initial)
	outcome, err := c.verifier.Verify(ctx, ex, c.basePath)
	s.lastVerify = c.clock.Now()
	if err != nil {
		return stay(StateExiting), err
	}
	c.printer.Outcome(ex, outcome)

	if !outcome.Passed {
		c.setState(ctx, StateWatching)
		c.printer.WaitingForChanges(ex)
		return stay(StateWatching), nil
	}

	if err := c.markPassed(ctx, s.index); err != nil {
		return stay(StateExiting), err
	}

	if _, ok := c.set.FindNext(); !ok {
		c.setState(ctx, StateAllComplete)
		c.printer.AllComplete(c.statusFile)
		return stay(StateAllComplete), nil
	}

	c.setState(ctx, StateAdvancePrompt)
	c.printer.AdvancePrompt(ex)
	return stay(StateAdvancePrompt), nil
}

func (c *Controller) handleKey(ctx context.Context, s *session, key rune) transition {
	if key == keyQuit || key == terminal.KeyInterrupt {
		c.setState(ctx, StateExiting)
		c.printer.Message("Exiting watch mode.")
		return stay(StateExiting)
	}

	if c.State() == StateAdvancePrompt {
		return c.handlePromptKey(ctx, s, key)
	}

	ex := c.set.At(s.index)
	switch key {
	case keyHint:
		c.printer.Hint(ex)
	case keyList:
		c.printer.List(c.set.All(), s.index)
	case keyNext:
		if next, ok := c.set.FindNextAfter(s.index); ok {
			return transition{state: StateWatching, next: next}
		}
		if ex.Completed {
			c.setState(ctx, StateAllComplete)
			c.printer.AllComplete(c.statusFile)
			return stay(StateAllComplete)
		}
		c.printer.Message("No other incomplete exercises; staying on %s.", ex.Name)
	default:
		c.logger.Debug(ctx, "ignoring key", "key", string(key))
	}
	return stay(c.State())
}

// handlePromptKey answers the advance prompt: confirm moves on, anything
// else resumes watching the exercise that just passed.
func (c *Controller) handlePromptKey(ctx context.Context, s *session, key rune) transition {
	if key == keyConfirm || key == 'Y' {
		if next, ok := c.set.FindNext(); ok {
			return transition{state: StateWatching, next: next}
		}
		c.setState(ctx, StateAllComplete)
		c.printer.AllComplete(c.statusFile)
		return stay(StateAllComplete)
	}

	c.setState(ctx, StateWatching)
	c.printer.WaitingForChanges(c.set.At(s.index))
	return stay(StateWatching)
}
