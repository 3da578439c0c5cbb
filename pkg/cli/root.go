// Package cli implements the faultd command-line interface: inspecting the
// effective configuration, listing injection profiles and summarizing event
// logs. The injection layer itself is library code; the CLI is tooling
// around it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo carries version details set at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "faultd",
	Short:         "Fault injection tooling for socket and file I/O testing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

// Execute runs the CLI.
func Execute(info BuildInfo) error {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.BuildDate)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
