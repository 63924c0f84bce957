package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/journey/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, commit, Go version and platform journey was built with.

Examples:
  journey version                 # One line
  journey version -o json         # All build details as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

var versionFlags *OutputFlags

func init() {
	rootCmd.AddCommand(versionCmd)
	versionFlags = AddOutputFlag(versionCmd, formatText, formatJSON, formatYAML)
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.GetBuildInfo()
	out := cmd.OutOrStdout()

	encoded, err := versionFlags.Encode(out, info)
	if encoded || err != nil {
		return err
	}

	fmt.Fprintln(out, info.Short())
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(out, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}
