package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/config"
	"github.com/conneroisu/journey/internal/controller"
	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/exercise"
	"github.com/conneroisu/journey/internal/logging"
	"github.com/conneroisu/journey/internal/status"
	"github.com/conneroisu/journey/internal/terminal"
	"github.com/conneroisu/journey/internal/verify"
)

// app is what every command needs: the resolved configuration and the
// curriculum with its persisted completion overlaid.
type app struct {
	cfg    *config.Config
	set    *exercise.Set
	logger logging.Logger
	closer func() error
}

// loadApp reads configuration, the registry and the status file. Logs go to
// logOut unless a log directory is configured.
func loadApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, closer: func() error { return nil }}
	if err := a.initLogger(logOut); err != nil {
		return nil, err
	}

	set, err := exercise.Load(cfg.RegistryPath())
	if err == nil {
		err = status.Load(cfg.StatusPath(), set)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.set = set

	a.logger.Debug(context.Background(), "configuration loaded", "config", cfg.String(),
		"exercises", set.Len(), "completed", set.CompletedCount())
	return a, nil
}

func (a *app) initLogger(out io.Writer) error {
	lc, err := a.cfg.LoggerConfig()
	if err != nil {
		return jerrors.NewConfigError(jerrors.CodeInvalidConfig, "invalid log configuration", err)
	}

	if a.cfg.Log.Dir == "" {
		lc.Output = out
		a.logger = logging.NewLogger(lc)
		return nil
	}

	fl, err := logging.NewFileLogger(lc, a.cfg.Log.Dir)
	if err != nil {
		return jerrors.NewConfigError(jerrors.CodeInvalidConfig, "failed to open log file", err).WithPath(a.cfg.Log.Dir)
	}
	a.logger = fl
	a.closer = fl.Close
	a.logger.Debug(context.Background(), "logging to file", "path", fl.Path())
	return nil
}

// Close releases the log file, if any.
func (a *app) Close() error {
	return a.closer()
}

func (a *app) verifier() *verify.Verifier {
	tc := verify.Toolchain{
		Compiler:  a.cfg.Toolchain.Compiler,
		Edition:   a.cfg.Toolchain.Edition,
		ExtraArgs: a.cfg.Toolchain.ExtraArgs,
	}
	return verify.New(tc,
		verify.WithTimeout(a.cfg.Verify.Timeout),
		verify.WithLogger(a.logger),
	)
}

func (a *app) controller(printer controller.Printer, opts ...controller.Option) *controller.Controller {
	base := []controller.Option{
		controller.WithBasePath(a.cfg.BasePath),
		controller.WithStatusFile(a.cfg.StatusPath()),
		controller.WithDebounce(a.cfg.Watch.Debounce),
		controller.WithPollInterval(a.cfg.Watch.PollInterval),
		controller.WithLogger(a.logger),
	}
	return controller.New(a.set, a.verifier(), printer, append(base, opts...)...)
}

// withApp loads the app for cmd, runs fn and reports structured errors
// through the logger before handing them back to cobra.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app, printer *terminal.Printer) error) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close log file: %v\n", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := fn(ctx, a, terminal.NewPrinter(cmd.OutOrStdout())); err != nil {
		jerrors.NewErrorHandler(a.logger).Handle(ctx, err)
		return err
	}
	return nil
}
