package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/terminal"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify every exercise in order",
	Long: `Verify every exercise in curriculum order and record the ones that pass.

Completion is never cleared: an exercise done earlier stays done even if it
fails now. Progress is saved once, after the last exercise.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

var verifyFlags *OutputFlags

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyFlags = AddOutputFlag(verifyCmd, formatText, formatJSON, formatYAML)
}

func runVerify(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app, printer *terminal.Printer) error {
		// structured output owns stdout; progress moves to stderr
		if verifyFlags.Format != formatText {
			printer = terminal.NewPrinter(cmd.ErrOrStderr())
		}

		summary, err := a.controller(printer).VerifyAll(ctx)
		if err != nil {
			return err
		}
		_, err = verifyFlags.Encode(cmd.OutOrStdout(), summary)
		return err
	})
}
