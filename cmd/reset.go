package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/terminal"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all progress",
	Long:  `Delete the status file so every exercise counts as incomplete again.`,
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app, printer *terminal.Printer) error {
		existed, err := a.controller(printer).ResetStatus()
		if err != nil {
			return err
		}
		if existed {
			printer.Message("Progress reset; removed %s.", a.cfg.StatusPath())
		} else {
			printer.Message("Nothing to reset; no progress recorded yet.")
		}
		return nil
	})
}
