// Package cmd provides the command-line interface for journey.
//
// Configuration System:
//
//	Settings are resolved from several sources with clear precedence:
//	1. Command-line flags (--config, --base-path, --log-level) - highest priority
//	2. JOURNEY_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (JOURNEY_TOOLCHAIN_COMPILER, etc.)
//	4. Configuration file (.journey.yml) - lowest priority
//
// Environment Variables:
//
//	JOURNEY_CONFIG_FILE: Path to custom configuration file
//	JOURNEY_BASE_PATH: Directory holding the registry and exercises
//	JOURNEY_TOOLCHAIN_COMPILER: Compiler used to verify exercises
//	JOURNEY_VERIFY_TIMEOUT: Upper bound for one verification
//	And the rest following the JOURNEY_<SECTION>_<OPTION> pattern
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/journey/internal/terminal"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "journey",
	Short: "Work through a curriculum of small exercises, one file at a time",
	Long: `Journey walks you through an ordered set of small exercises. Each exercise
is a single source file that either has to compile or has to pass its tests.

Progress is stored next to the registry, so you can stop at any time and pick
up where you left off.

Quick Start:
  journey watch                   Fix exercises one by one, re-checking on save
  journey list                    Show every exercise and whether it is done
  journey hint                    Show the hint for the current exercise
  journey run variables1          Check one exercise once
  journey verify                  Check every exercise

Run journey from the project root, the directory holding info.toml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		terminal.NewPrinter(rootCmd.ErrOrStderr()).Error(err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .journey.yml, can also use JOURNEY_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("base-path", "", "directory holding the registry and exercises (default \".\")")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("base_path", rootCmd.PersistentFlags().Lookup("base-path"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. JOURNEY_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .journey.yml in current directory
//
// Every key can also be overridden from the environment with the JOURNEY_
// prefix, dots replaced by underscores (e.g. JOURNEY_WATCH_DEBOUNCE=250ms).
func initConfig() {
	explicit := cfgFile
	if explicit == "" {
		explicit = os.Getenv("JOURNEY_CONFIG_FILE")
	}

	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".journey")
	}

	viper.SetEnvPrefix("JOURNEY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing default file is fine; everything has a default.
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case explicit != "" || !errors.As(err, &notFound):
		terminal.NewPrinter(os.Stderr).Warn("Warning: could not read config file: %v", err)
	}
}
