package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/terminal"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List every exercise and whether it is done",
	Long: `List the exercises in curriculum order with their mode and completion.

Examples:
  journey list                    # Table
  journey list -o json            # JSON, for scripts
  journey list -o yaml            # YAML`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFlags *OutputFlags

// listing is the structured form of the list output.
type listing struct {
	Completed int                  `json:"completed" yaml:"completed"`
	Total     int                  `json:"total" yaml:"total"`
	Exercises []*exercise.Exercise `json:"exercises" yaml:"exercises"`
}

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = AddOutputFlag(listCmd, formatTable, formatJSON, formatYAML)
}

func runList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app, _ *terminal.Printer) error {
		out := cmd.OutOrStdout()
		l := listing{
			Completed: a.set.CompletedCount(),
			Total:     a.set.Len(),
			Exercises: a.set.All(),
		}

		encoded, err := listFlags.Encode(out, l)
		if encoded || err != nil {
			return err
		}
		return outputListTable(out, l)
	})
}

func outputListTable(out io.Writer, l listing) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tMODE\tDONE\tPATH")
	for i, ex := range l.Exercises {
		done := "✗"
		if ex.Completed {
			done = "✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, ex.Name, ex.Mode, done, ex.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	percent := 0.0
	if l.Total > 0 {
		percent = float64(l.Completed) * 100 / float64(l.Total)
	}
	_, err := fmt.Fprintf(out, "\nProgress: %d/%d (%.1f%%)\n", l.Completed, l.Total, percent)
	return err
}
