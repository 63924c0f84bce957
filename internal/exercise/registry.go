package exercise

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	jerrors "github.com/conneroisu/journey/internal/errors"
)

// registryFile mirrors info.toml:
//
//	[[exercises]]
//	name = "variables1"
//	path = "exercises/variables/variables1.rs"
//	mode = "compile"
//	hint = "..."
type registryFile struct {
	Exercises []registryEntry `toml:"exercises"`
}

// registryEntry keeps mode a pointer so a missing key is told apart from
// "compile".
type registryEntry struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
	Mode *Mode  `toml:"mode"`
	Hint string `toml:"hint"`
}

// Load reads the ordered exercise registry at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, jerrors.NewConfigError(jerrors.CodeRegistryMissing,
				"exercise registry not found; run journey from the project root", err).WithPath(path)
		}
		return nil, jerrors.NewIOError(jerrors.CodeRegistryMissing, "failed to read exercise registry", err).WithPath(path)
	}

	return Parse(path, data)
}

// Parse decodes registry content; path is only used in error messages.
func Parse(path string, data []byte) (*Set, error) {
	var file registryFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&file); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, jerrors.NewConfigError(jerrors.CodeRegistryMalformed,
				fmt.Sprintf("malformed exercise registry at line %d, column %d", row, col), err).WithPath(path)
		}
		return nil, jerrors.NewConfigError(jerrors.CodeRegistryMalformed, "malformed exercise registry", err).WithPath(path)
	}

	if len(file.Exercises) == 0 {
		return nil, jerrors.NewConfigError(jerrors.CodeRegistryMalformed,
			"exercise registry has no [[exercises]] entries", nil).WithPath(path)
	}

	exercises := make([]*Exercise, 0, len(file.Exercises))
	for i, entry := range file.Exercises {
		if entry.Mode == nil {
			label := entry.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			return nil, jerrors.NewConfigError(jerrors.CodeRegistryMalformed,
				fmt.Sprintf("exercise %s has no mode (want \"compile\" or \"test\")", label), nil).WithPath(path)
		}
		exercises = append(exercises, &Exercise{
			Name: entry.Name,
			Path: entry.Path,
			Mode: *entry.Mode,
			Hint: entry.Hint,
		})
	}

	set, err := NewSet(exercises)
	if err != nil {
		return nil, jerrors.NewConfigError(jerrors.CodeRegistryMalformed, "invalid exercise registry", err).WithPath(path)
	}
	return set, nil
}
