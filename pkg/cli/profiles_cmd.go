package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getmockd/faultd/pkg/fault"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in injection profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := fault.ListProfiles()

		if jsonOutput {
			type entry struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			entries := make([]entry, len(profiles))
			for i, p := range profiles {
				entries[i] = entry{Name: p.Name, Description: p.Description}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		}
		return w.Flush()
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <name>",
	Short: "Print a profile as FAULT_* export lines",
	Long: `Print a built-in profile as shell export lines, ready for eval:

    eval "$(faultd profile flaky-network)"
    ./myapp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := fault.GetProfile(args[0])
		if !ok {
			return fmt.Errorf("unknown profile %q (run 'faultd profiles' to list)", args[0])
		}
		if jsonOutput {
			data, err := json.MarshalIndent(configView(p.Config), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		for _, line := range fault.EnvExports(p.Config) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(profileCmd)
}
