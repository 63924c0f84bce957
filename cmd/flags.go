package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o.
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// OutputFlags provides the -o flag shared by the reporting commands
type OutputFlags struct {
	Format  string
	allowed []string
}

// AddOutputFlag registers -o/--output on cmd. The first allowed format is
// the default.
func AddOutputFlag(cmd *cobra.Command, allowed ...string) *OutputFlags {
	flags := &OutputFlags{allowed: allowed}
	cmd.Flags().VarP(&formatValue{flags: flags}, "output", "o",
		fmt.Sprintf("Output format (%s)", strings.Join(allowed, "|")))
	flags.Format = allowed[0]
	return flags
}

// Encode writes v as JSON or YAML. It reports false for human formats, which
// the caller renders itself.
func (f *OutputFlags) Encode(w io.Writer, v interface{}) (bool, error) {
	switch f.Format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return true, err
		}
		return true, encoder.Close()
	default:
		return false, nil
	}
}

// formatValue validates -o while the flag is parsed, so a bad format fails
// before any work is done.
type formatValue struct {
	flags *OutputFlags
}

var _ pflag.Value = (*formatValue)(nil)

func (v *formatValue) String() string {
	if v.flags == nil {
		return ""
	}
	return v.flags.Format
}

func (v *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, allowed := range v.flags.allowed {
		if s == allowed {
			v.flags.Format = s
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q, must be one of: %s", s, strings.Join(v.flags.allowed, ", "))
}

func (v *formatValue) Type() string { return "format" }
