package terminal

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/verify"
)

func TestPrinterList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.List([]*exercise.Exercise{
		{Name: "intro1", Completed: true},
		{Name: "intro2"},
	}, 1)

	out := buf.String()
	assert.Contains(t, out, "  1. [✓] intro1")
	assert.Contains(t, out, "  2. [✗] intro2 (current)")
}

func TestPrinterOutcome(t *testing.T) {
	ex := &exercise.Exercise{Name: "vars1"}

	t.Run("passed", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).Outcome(ex, verify.Outcome{Passed: true, Duration: 1500 * time.Millisecond})
		assert.Contains(t, buf.String(), "✓ vars1 passed (1.5s)")
	})

	t.Run("failed with diagnostics", func(t *testing.T) {
		var buf bytes.Buffer
		raw := "error[E0425]: cannot find value `x` in this scope\n --> a.rs:3:5\n"
		NewPrinter(&buf).Outcome(ex, verify.Outcome{
			Diagnostic:  raw,
			Diagnostics: errors.NewDiagnosticParser().Parse(raw),
		})

		out := buf.String()
		assert.Contains(t, out, "✗ vars1 failed")
		assert.Contains(t, out, "--> a.rs:3:5")
		assert.Contains(t, out, "1 error(s), 0 warning(s); first: error[E0425] a.rs:3:5")
	})
}

func TestPrinterHint(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Hint(&exercise.Exercise{Name: "vars1", Hint: "Declare x with let.\x1b"})
	p.Hint(&exercise.Exercise{Name: "vars2"})

	out := buf.String()
	assert.Contains(t, out, "Hint for vars1:\nDeclare x with let.\n")
	assert.Contains(t, out, "No hint available")
}

func TestPrinterClear(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Clear()
	assert.Empty(t, buf.String())

	NewPrinter(&buf, WithClearScreen(true)).Clear()
	assert.Equal(t, clearSequence, buf.String())
}

func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Summary(3, 0, 3)
	p.Summary(1, 2, 3)
	p.Error(fmt.Errorf("boom"))

	out := buf.String()
	assert.Contains(t, out, "All 3 exercises pass!")
	assert.Contains(t, out, "1 of 3 exercises pass.")
	assert.Contains(t, out, "ERROR: boom")
}
