package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/controller"
	"github.com/conneroisu/journey/internal/terminal"
)

var hintCmd = &cobra.Command{
	Use:   "hint [name]",
	Short: "Show the hint for an exercise",
	Long: `Show the hint for the named exercise, or for the first incomplete one.

Examples:
  journey hint                    # Hint for the current exercise
  journey hint variables1         # Hint for a specific exercise`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHint,
}

func init() {
	rootCmd.AddCommand(hintCmd)
}

func runHint(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	return withApp(cmd, func(_ context.Context, a *app, printer *terminal.Printer) error {
		i, err := a.controller(printer).Resolve(name)
		if errors.Is(err, controller.ErrAllComplete) {
			printer.AllComplete(a.cfg.StatusPath())
			return nil
		}
		if err != nil {
			return err
		}
		printer.Hint(a.set.At(i))
		return nil
	})
}
