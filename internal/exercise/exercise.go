// Package exercise defines the curriculum model: exercises, their
// verification mode, and the ordered set the controller walks through.
package exercise

import (
	"fmt"
	"strings"
)

// Mode selects how an exercise is verified.
type Mode int

const (
	// ModeCompile passes when the file compiles.
	ModeCompile Mode = iota
	// ModeTest passes when the file compiles as a test binary and its tests pass.
	ModeTest
)

// String returns the registry spelling of the mode
func (m Mode) String() string {
	switch m {
	case ModeCompile:
		return "compile"
	case ModeTest:
		return "test"
	default:
		return "unknown"
	}
}

// UnmarshalText accepts "compile" or "test".
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "compile":
		*m = ModeCompile
	case "test":
		*m = ModeTest
	default:
		return fmt.Errorf("unknown mode %q (want \"compile\" or \"test\")", string(text))
	}
	return nil
}

// MarshalText renders the mode for JSON and YAML listings.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Exercise is one curriculum unit. Completed is the only field that changes
// after the registry is loaded.
type Exercise struct {
	Name      string `toml:"name" json:"name" yaml:"name"`
	Path      string `toml:"path" json:"path" yaml:"path"`
	Mode      Mode   `toml:"mode" json:"mode" yaml:"mode"`
	Hint      string `toml:"hint" json:"hint,omitempty" yaml:"hint,omitempty"`
	Completed bool   `toml:"-" json:"completed" yaml:"completed"`
}

// Set is the ordered curriculum. Order is insertion order and names are unique.
type Set struct {
	exercises []*Exercise
	index     map[string]int
}

// NewSet builds a set, rejecting empty or duplicate names.
func NewSet(exercises []*Exercise) (*Set, error) {
	s := &Set{
		exercises: make([]*Exercise, 0, len(exercises)),
		index:     make(map[string]int, len(exercises)),
	}
	for i, ex := range exercises {
		if ex == nil {
			return nil, fmt.Errorf("exercise %d is empty", i+1)
		}
		if ex.Name == "" {
			return nil, fmt.Errorf("exercise %d has no name", i+1)
		}
		if ex.Path == "" {
			return nil, fmt.Errorf("exercise %q has no path", ex.Name)
		}
		if _, dup := s.index[ex.Name]; dup {
			return nil, fmt.Errorf("duplicate exercise name %q", ex.Name)
		}
		s.index[ex.Name] = len(s.exercises)
		s.exercises = append(s.exercises, ex)
	}
	return s, nil
}

// Len returns the number of exercises.
func (s *Set) Len() int { return len(s.exercises) }

// At returns the exercise at index i.
func (s *Set) At(i int) *Exercise { return s.exercises[i] }

// All returns the exercises in curriculum order. The slice is shared.
func (s *Set) All() []*Exercise { return s.exercises }

// Lookup returns the index of the named exercise.
func (s *Set) Lookup(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// FindNext returns the first incomplete exercise in curriculum order.
func (s *Set) FindNext() (int, bool) {
	for i, ex := range s.exercises {
		if !ex.Completed {
			return i, true
		}
	}
	return -1, false
}

// FindNextAfter returns the first incomplete exercise other than current,
// scanning forward from current and wrapping to the start.
func (s *Set) FindNextAfter(current int) (int, bool) {
	n := len(s.exercises)
	for step := 1; step < n; step++ {
		i := (current + step) % n
		if !s.exercises[i].Completed {
			return i, true
		}
	}
	return -1, false
}

// CompletedCount returns how many exercises are done.
func (s *Set) CompletedCount() int {
	count := 0
	for _, ex := range s.exercises {
		if ex.Completed {
			count++
		}
	}
	return count
}
