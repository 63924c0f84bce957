package controller

// State is a position in the watch-mode state machine.
type State int

const (
	// StateWatching waits for a debounced file change or a keypress.
	StateWatching State = iota
	// StateVerifying runs the toolchain; no input is processed.
	StateVerifying
	// StateAdvancePrompt follows a pass and asks whether to move on.
	StateAdvancePrompt
	// StateAllComplete is terminal: nothing is left to do.
	StateAllComplete
	// StateExiting is terminal: the user quit.
	StateExiting
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateVerifying:
		return "verifying"
	case StateAdvancePrompt:
		return "advance-prompt"
	case StateAllComplete:
		return "all-complete"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a watch.
func (s State) Terminal() bool {
	return s == StateAllComplete || s == StateExiting
}
