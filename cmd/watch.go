package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/controller"
	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/terminal"
	"github.com/conneroisu/journey/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-verify the current exercise every time it is saved",
	Long: `Watch the first incomplete exercise and verify it again whenever its file
changes. Once it passes you are asked whether to move on.

Keys:
  q   quit
  h   show the hint for the current exercise
  l   list all exercises
  n   skip to the next incomplete exercise`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		stdin = os.Stdin
	}

	keys, err := terminal.OpenKeyReader(stdin)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keys.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to restore terminal: %v\n", closeErr)
		}
	}()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if keys.Raw() {
		out, errOut = terminal.NewCRLFWriter(out), terminal.NewCRLFWriter(errOut)
	}

	a, err := loadApp(errOut)
	if err != nil {
		return err
	}
	defer a.Close()

	printer := terminal.NewPrinter(out, terminal.WithClearScreen(a.cfg.Watch.ClearScreen && keys.Raw()))
	c := a.controller(printer,
		controller.WithWatcherFactory(a.watcherFactory()),
		controller.WithKeys(keys.Keys()),
	)

	state, err := c.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		printer.Message("Exiting watch mode.")
		return nil
	}
	if err != nil {
		jerrors.NewErrorHandler(a.logger).Handle(ctx, err)
		return err
	}

	a.logger.Debug(ctx, "watch finished", "state", state.String())
	return nil
}

// watcherFactory starts a FileWatcher per watch session.
func (a *app) watcherFactory() controller.WatcherFactory {
	return func(path string) (controller.EventSource, error) {
		fw, err := watcher.New(path, watcher.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		return fw, nil
	}
}
