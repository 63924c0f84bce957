package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/controller"
	"github.com/conneroisu/journey/internal/terminal"
)

var runCmd = &cobra.Command{
	Use:     "run [name]",
	Aliases: []string{"r"},
	Short:   "Verify one exercise once",
	Long: `Verify a single exercise and record it as done when it passes.

Without a name, the first incomplete exercise is verified.

Examples:
  journey run                     # Verify the next incomplete exercise
  journey run variables1          # Verify a specific exercise`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Verify the next incomplete exercise once",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

// ErrExerciseFailed is returned when a one-shot verification does not pass,
// so the process exits non-zero.
var ErrExerciseFailed = errors.New("exercise did not pass")

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(nextCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	return withApp(cmd, func(ctx context.Context, a *app, printer *terminal.Printer) error {
		outcome, err := a.controller(printer).RunOnce(ctx, name)
		if errors.Is(err, controller.ErrAllComplete) {
			printer.AllComplete(a.cfg.StatusPath())
			return nil
		}
		if err != nil {
			return err
		}
		if !outcome.Passed {
			return fmt.Errorf("%w: fix the errors above and run it again", ErrExerciseFailed)
		}
		return nil
	})
}
