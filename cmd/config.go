package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/journey/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect journey configuration",
	Long: `Inspect the configuration journey resolves from .journey.yml, JOURNEY_
environment variables and command-line flags.

Examples:
  journey config show             # Show the resolved configuration as YAML
  journey config show -o json     # ...or as JSON
  journey config validate         # Check the configuration and report problems`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configShowFlags *OutputFlags

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowFlags = AddOutputFlag(configShowCmd, formatYAML, formatJSON)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "# from %s\n", used)
	}
	_, err = configShowFlags.Encode(cmd.OutOrStdout(), cfg)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
	return nil
}
