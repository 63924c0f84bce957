// Package validation provides checks applied to configured toolchain
// commands and registry-supplied paths before they reach exec or the
// file system.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "\"", "'", "\\", "\x00"}

// ValidateArgument validates a command line argument taken from configuration
func ValidateArgument(arg string) error {
	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %q", char)
		}
	}
	return nil
}

// ValidateCommand validates a command name or path. When allowedCommands is
// non-nil the command's base name must be listed in it.
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if strings.ContainsAny(command, " \t\n") {
		return fmt.Errorf("command '%s' must not contain whitespace", command)
	}

	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}

	if allowedCommands != nil && !allowedCommands[filepath.Base(command)] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	return nil
}

// ResolveExercisePath joins rel onto base and rejects results that escape
// base. The returned path is cleaned.
func ResolveExercisePath(base, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("exercise path must be relative: %s", rel)
	}

	full := filepath.Join(base, rel)
	within, err := filepath.Rel(filepath.Clean(base), full)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}
	if within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s", rel)
	}

	return full, nil
}

// SanitizeInput removes control characters other than common whitespace
// from text that will be written to the terminal
func SanitizeInput(input string) string {
	var sanitized strings.Builder
	for _, r := range input {
		if r >= 32 && r != 127 || r == '\t' || r == '\n' || r == '\r' {
			sanitized.WriteRune(r)
		}
	}

	return sanitized.String()
}
