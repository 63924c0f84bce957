// Package errors provides the typed error taxonomy used across journey and a
// parser that turns raw toolchain output into structured diagnostics.
//
// Toolchain output is always shown to the user verbatim; the parser only
// extracts locations and counts so summaries can point at the first problem.
package errors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorSeverity represents the severity of a diagnostic
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// DiagnosticKind represents different kinds of toolchain diagnostics
type DiagnosticKind int

const (
	DiagnosticKindUnknown DiagnosticKind = iota
	DiagnosticKindCompile
	DiagnosticKindWarning
	DiagnosticKindTestFailure
	DiagnosticKindPanic
)

// Diagnostic is one structured entry extracted from toolchain output
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Severity ErrorSeverity  `json:"severity"`
	Code     string         `json:"code,omitempty"`
	File     string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Column   int            `json:"column,omitempty"`
	Message  string         `json:"message"`
	Raw      string         `json:"raw"`
}

// DiagnosticParser parses compiler and test-harness output
type DiagnosticParser struct {
	patterns []diagnosticPattern
	location *regexp.Regexp
}

type diagnosticPattern struct {
	regex    *regexp.Regexp
	kind     DiagnosticKind
	severity ErrorSeverity
	fields   func(matches []string) (code, message string)
}

// NewDiagnosticParser creates a new diagnostic parser
func NewDiagnosticParser() *DiagnosticParser {
	return &DiagnosticParser{
		patterns: buildPatterns(),
		location: regexp.MustCompile(`^-->\s+(.+?):(\d+):(\d+)$`),
	}
}

// Parse extracts diagnostics from output. A `--> file:line:col` line
// following a diagnostic header supplies that diagnostic's location.
func (dp *DiagnosticParser) Parse(output string) []*Diagnostic {
	var diagnostics []*Diagnostic
	var last *Diagnostic

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := dp.location.FindStringSubmatch(line); m != nil {
			if last != nil && last.File == "" {
				last.File = m[1]
				last.Line, _ = strconv.Atoi(m[2])
				last.Column, _ = strconv.Atoi(m[3])
			}
			continue
		}

		d := dp.match(line)
		if d == nil {
			continue
		}
		if d.Message == "" {
			// aggregate line; it closes the previous diagnostic
			last = nil
			continue
		}
		diagnostics = append(diagnostics, d)
		last = d
	}

	return diagnostics
}

func (dp *DiagnosticParser) match(line string) *Diagnostic {
	for _, p := range dp.patterns {
		m := p.regex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code, message := p.fields(m)
		return &Diagnostic{
			Kind:     p.kind,
			Severity: p.severity,
			Code:     code,
			Message:  message,
			Raw:      line,
		}
	}
	return nil
}

func buildPatterns() []diagnosticPattern {
	return []diagnosticPattern{
		{
			// aggregate lines such as "aborting due to 2 previous errors"
			regex: regexp.MustCompile(`^(error: aborting due to|warning: \d+ warnings? emitted)`),
			kind:  DiagnosticKindUnknown,
			fields: func(matches []string) (string, string) {
				return "", ""
			},
		},
		{
			regex:    regexp.MustCompile(`^error\[(E\d+)\]: (.+)$`),
			kind:     DiagnosticKindCompile,
			severity: ErrorSeverityError,
			fields: func(matches []string) (string, string) {
				return matches[1], matches[2]
			},
		},
		{
			regex:    regexp.MustCompile(`^error: (.+)$`),
			kind:     DiagnosticKindCompile,
			severity: ErrorSeverityError,
			fields: func(matches []string) (string, string) {
				return "", matches[1]
			},
		},
		{
			regex:    regexp.MustCompile(`^warning: (.+)$`),
			kind:     DiagnosticKindWarning,
			severity: ErrorSeverityWarning,
			fields: func(matches []string) (string, string) {
				return "", matches[1]
			},
		},
		{
			regex:    regexp.MustCompile(`^test (\S+) \.\.\. FAILED$`),
			kind:     DiagnosticKindTestFailure,
			severity: ErrorSeverityError,
			fields: func(matches []string) (string, string) {
				return "", fmt.Sprintf("test %s failed", matches[1])
			},
		},
		{
			regex:    regexp.MustCompile(`^thread '(.+?)' panicked at (.+)$`),
			kind:     DiagnosticKindPanic,
			severity: ErrorSeverityError,
			fields: func(matches []string) (string, string) {
				return "", fmt.Sprintf("%s panicked at %s", matches[1], strings.TrimSuffix(matches[2], ":"))
			},
		},
	}
}

// Summary counts errors and warnings.
func Summary(diagnostics []*Diagnostic) (errs, warnings int) {
	for _, d := range diagnostics {
		switch d.Severity {
		case ErrorSeverityError:
			errs++
		case ErrorSeverityWarning:
			warnings++
		}
	}
	return errs, warnings
}

// First returns the first error-severity diagnostic, if any.
func First(diagnostics []*Diagnostic) *Diagnostic {
	for _, d := range diagnostics {
		if d.Severity == ErrorSeverityError {
			return d
		}
	}
	return nil
}

// Location renders file:line:col, or just the file when no line is known.
func (d *Diagnostic) Location() string {
	if d.File == "" {
		return ""
	}
	if d.Line == 0 {
		return d.File
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

// FormatDiagnostic formats a diagnostic on one line for display
func (d *Diagnostic) FormatDiagnostic() string {
	var builder strings.Builder

	builder.WriteString(d.Severity.String())
	if d.Code != "" {
		builder.WriteString(fmt.Sprintf("[%s]", d.Code))
	}
	if loc := d.Location(); loc != "" {
		builder.WriteString(fmt.Sprintf(" %s", loc))
	}
	builder.WriteString(": ")
	builder.WriteString(d.Message)

	return builder.String()
}
