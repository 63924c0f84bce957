// Package status persists which exercises are complete.
//
// The file holds one `<name> = <true|false>` line per exercise. It is read
// once at startup and overlaid onto the freshly loaded registry, and is
// rewritten in full after every verification that changes completion.
package status

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
)

// DefaultFile is the status file name used when none is configured.
const DefaultFile = ".rust-journey-status"

const separator = " = "

// Load overlays persisted completion flags onto set by name. Unknown names
// and unparsable lines are ignored; a missing file leaves set untouched.
func Load(path string, set *exercise.Set) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return jerrors.NewIOError(jerrors.CodeStatusRead, "failed to read status file", err).WithPath(path)
	}

	for name, completed := range Parse(data) {
		if i, ok := set.Lookup(name); ok {
			set.At(i).Completed = completed
		}
	}
	return nil
}

// Parse decodes status file content into a name → completed map.
func Parse(data []byte) map[string]bool {
	entries := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		name, value, ok := strings.Cut(line, separator)
		if !ok {
			continue
		}
		completed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		entries[name] = completed
	}
	return entries
}

// Encode renders every exercise in curriculum order.
func Encode(set *exercise.Set) []byte {
	var buf bytes.Buffer
	for _, ex := range set.All() {
		fmt.Fprintf(&buf, "%s%s%t\n", ex.Name, separator, ex.Completed)
	}
	return buf.Bytes()
}

// Save replaces the status file with the current state of set. The content
// is written to a temporary file in the same directory and renamed over the
// target, so readers never observe a partial file.
func Save(set *exercise.Set, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to create status directory", err).WithPath(dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to create temp status file", err).WithPath(path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(Encode(set)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to write status file", err).WithPath(path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to write status file", err).WithPath(path)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to set status file permissions", err).WithPath(path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to replace status file", err).WithPath(path)
	}
	return nil
}

// Reset deletes the status file and reports whether one existed.
func Reset(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, jerrors.NewIOError(jerrors.CodeStatusWrite, "failed to delete status file", err).WithPath(path)
	}
}
