package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/validation"
	"github.com/conneroisu/journey/internal/verify"
)

const clearSequence = "\x1b[H\x1b[2J"

// Controls is the key legend shown while watching.
const Controls = "Press 'q' to quit, 'h' for hint, 'l' for list, 'n' for next exercise"

// Styles holds the lipgloss styles used by the printer
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Hint    lipgloss.Style
}

// DefaultStyles builds styles bound to a renderer so color output follows
// the destination's capabilities.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true),
		Heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Muted:   r.NewStyle().Faint(true),
		Success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		Hint:    r.NewStyle().Italic(true).Foreground(lipgloss.Color("3")),
	}
}

// Printer writes human-readable status and diagnostics
type Printer struct {
	w           io.Writer
	styles      Styles
	clearScreen bool
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithClearScreen enables clearing the screen before each new view.
func WithClearScreen(enabled bool) PrinterOption {
	return func(p *Printer) { p.clearScreen = enabled }
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		w:      w,
		styles: DefaultStyles(lipgloss.NewRenderer(w)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Clear clears the screen when enabled.
func (p *Printer) Clear() {
	if p.clearScreen {
		fmt.Fprint(p.w, clearSequence)
	}
}

// Watching prints the header for a watch session.
func (p *Printer) Watching(ex *exercise.Exercise, completed, total int) {
	p.println(p.styles.Title.Render("Watching exercise: " + ex.Name))
	p.println(p.styles.Muted.Render(fmt.Sprintf("Progress: %d/%d completed", completed, total)))
	p.println(Controls)
}

// Running prints the header for a one-shot verification.
func (p *Printer) Running(ex *exercise.Exercise) {
	p.println(p.styles.Title.Render("Running exercise: " + ex.Name))
}

// Verifying announces a verification run.
func (p *Printer) Verifying(ex *exercise.Exercise, initial bool) {
	if initial {
		p.println("\n" + p.styles.Heading.Render("Initial verification:"))
		return
	}
	p.println(p.styles.Heading.Render("File changed! Verifying..."))
}

// Outcome prints the result of a verification, including the raw toolchain
// output when it failed.
func (p *Printer) Outcome(ex *exercise.Exercise, outcome verify.Outcome) {
	elapsed := outcome.Duration.Round(time.Millisecond)
	if outcome.Passed {
		p.println(p.styles.Success.Render(fmt.Sprintf("✓ %s passed", ex.Name)) +
			p.styles.Muted.Render(fmt.Sprintf(" (%s)", elapsed)))
		return
	}

	p.println(p.styles.Failure.Render(fmt.Sprintf("✗ %s failed", ex.Name)) +
		p.styles.Muted.Render(fmt.Sprintf(" (%s)", elapsed)))
	if diag := strings.TrimRight(outcome.Diagnostic, "\n"); diag != "" {
		p.println(diag)
	}

	errs, warnings := errors.Summary(outcome.Diagnostics)
	if errs == 0 && warnings == 0 {
		return
	}
	summary := fmt.Sprintf("%d error(s), %d warning(s)", errs, warnings)
	if first := errors.First(outcome.Diagnostics); first != nil {
		summary += "; first: " + first.FormatDiagnostic()
	}
	p.println(p.styles.Muted.Render(summary))
}

// WaitingForChanges prints the idle line shown between verifications.
func (p *Printer) WaitingForChanges(ex *exercise.Exercise) {
	p.println("\n" + p.styles.Muted.Render("Watching for changes..."))
	p.println(p.styles.Muted.Render("Target file: " + ex.Path))
}

// AdvancePrompt asks whether to move to the next exercise.
func (p *Printer) AdvancePrompt(ex *exercise.Exercise) {
	p.println(p.styles.Success.Render("Exercise completed! Move to next? [y/n]"))
}

// AllComplete prints the closing message.
func (p *Printer) AllComplete(statusFile string) {
	p.println(p.styles.Success.Render("All exercises completed! Congratulations!"))
	p.println("\nYou've completed every exercise in the course.")
	p.println(fmt.Sprintf("To start over, run 'journey reset' or delete %s.", statusFile))
}

// Hint prints the exercise hint.
func (p *Printer) Hint(ex *exercise.Exercise) {
	p.println(p.styles.Hint.Render(fmt.Sprintf("Hint for %s:", ex.Name)))
	hint := strings.TrimSpace(validation.SanitizeInput(ex.Hint))
	if hint == "" {
		hint = "No hint available for this exercise."
	}
	p.println(hint)
}

// List prints every exercise with its completion glyph. current is marked
// when it is a valid index.
func (p *Printer) List(exercises []*exercise.Exercise, current int) {
	p.println(p.styles.Title.Underline(true).Render("Exercises:"))
	p.println("")
	for i, ex := range exercises {
		status := p.styles.Failure.Render("✗")
		if ex.Completed {
			status = p.styles.Success.Render("✓")
		}
		line := fmt.Sprintf("%3d. [%s] %s", i+1, status, ex.Name)
		if i == current {
			line += p.styles.Muted.Render(" (current)")
		}
		p.println(line)
	}
}

// Summary prints the result of verifying every exercise.
func (p *Printer) Summary(passed, failed, total int) {
	p.println("")
	if failed == 0 {
		p.println(p.styles.Success.Render(fmt.Sprintf("All %d exercises pass! Congratulations!", total)))
		return
	}
	p.println(p.styles.Warning.Render(fmt.Sprintf("%d of %d exercises pass. Keep working on the rest!", passed, total)))
	p.println("Use 'journey watch' to focus on the next incomplete exercise.")
}

// Progress prints an "Exercise i/n: name" line used when verifying all.
func (p *Printer) Progress(i, total int, ex *exercise.Exercise) {
	p.println("\n" + p.styles.Heading.Render(fmt.Sprintf("Exercise %d/%d: %s", i, total, ex.Name)))
}

// Message prints a plain line.
func (p *Printer) Message(format string, args ...interface{}) {
	p.println(fmt.Sprintf(format, args...))
}

// Warn prints a highlighted line.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.println(p.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints err on a single highlighted line.
func (p *Printer) Error(err error) {
	p.println(p.styles.Failure.Render("ERROR: " + err.Error()))
}
