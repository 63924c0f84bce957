package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conneroisu/journey/internal/logging"
	"github.com/conneroisu/journey/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
	if len(ve.Suggestions) > 0 {
		msg += " (" + strings.Join(ve.Suggestions, "; ") + ")"
	}
	return msg
}

// validateConfig validates configuration values for security and correctness.
// All problems are reported together.
func validateConfig(config *Config) error {
	var errs []error

	if strings.TrimSpace(config.Registry) == "" {
		errs = append(errs, &ValidationError{
			Field:       "registry",
			Message:     "cannot be empty",
			Suggestions: []string{"set registry to the exercise list, e.g. info.toml"},
		})
	}
	if strings.TrimSpace(config.StatusFile) == "" {
		errs = append(errs, &ValidationError{Field: "status_file", Message: "cannot be empty"})
	}
	if strings.TrimSpace(config.BasePath) == "" {
		config.BasePath = "."
	}

	errs = append(errs, validateToolchainConfig(&config.Toolchain)...)

	if config.Verify.Timeout <= 0 {
		errs = append(errs, &ValidationError{
			Field:       "verify.timeout",
			Value:       config.Verify.Timeout,
			Message:     "must be positive",
			Suggestions: []string{"use a duration such as 2m"},
		})
	}
	if config.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{Field: "watch.debounce", Value: config.Watch.Debounce, Message: "cannot be negative"})
	}
	if config.Watch.PollInterval <= 0 {
		errs = append(errs, &ValidationError{Field: "watch.poll_interval", Value: config.Watch.PollInterval, Message: "must be positive"})
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		errs = append(errs, &ValidationError{
			Field:       "log.level",
			Value:       config.Log.Level,
			Message:     err.Error(),
			Suggestions: []string{"use debug, info, warn or error"},
		})
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, &ValidationError{
			Field:       "log.format",
			Value:       config.Log.Format,
			Message:     fmt.Sprintf("unknown format %q", config.Log.Format),
			Suggestions: []string{"use text or json"},
		})
	}

	return errors.Join(errs...)
}

// validateToolchainConfig rejects values that would be unsafe on a command line
func validateToolchainConfig(config *ToolchainConfig) []error {
	var errs []error

	if err := validation.ValidateCommand(config.Compiler, nil); err != nil {
		errs = append(errs, &ValidationError{Field: "toolchain.compiler", Value: config.Compiler, Message: err.Error()})
	}
	if err := validation.ValidateArgument(config.Edition); err != nil {
		errs = append(errs, &ValidationError{Field: "toolchain.edition", Value: config.Edition, Message: err.Error()})
	}
	for _, arg := range config.ExtraArgs {
		if err := validation.ValidateArgument(arg); err != nil {
			errs = append(errs, &ValidationError{Field: "toolchain.extra_args", Value: arg, Message: err.Error()})
		}
	}

	return errs
}
