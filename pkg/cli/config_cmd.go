package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/faultd/pkg/fault"
)

var configFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective injection configuration",
	Long: `Show the injection configuration as the library would resolve it:
from the FAULT_* environment variables, or from a profile file with --file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg fault.Config
		if configFile != "" {
			var err error
			cfg, err = fault.LoadFile(configFile)
			if err != nil {
				return err
			}
		} else {
			cfg = fault.FromEnv()
		}

		if jsonOutput {
			data, err := json.MarshalIndent(configView(cfg), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		for _, line := range fault.EnvExports(cfg) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

// view is the JSON shape for a configuration, with symbolic errnos and
// millisecond latency matching the environment interface.
type view struct {
	Enabled         bool    `json:"enabled"`
	ConnectFailRate float64 `json:"connectFailRate"`
	ConnectErrno    string  `json:"connectErrno"`
	SendFailRate    float64 `json:"sendFailRate"`
	SendErrno       string  `json:"sendErrno"`
	RecvFailRate    float64 `json:"recvFailRate"`
	RecvShortRate   float64 `json:"recvShortRate"`
	RecvErrno       string  `json:"recvErrno"`
	OpenFailRate    float64 `json:"openFailRate"`
	OpenErrno       string  `json:"openErrno"`
	LatencyMs       int64   `json:"latencyMs"`
	TargetPort      int     `json:"targetPort"`
	LogFile         string  `json:"logFile,omitempty"`
}

func configView(cfg fault.Config) view {
	return view{
		Enabled:         cfg.Enabled,
		ConnectFailRate: cfg.ConnectFailRate,
		ConnectErrno:    fault.ErrnoName(cfg.ConnectErrno),
		SendFailRate:    cfg.SendFailRate,
		SendErrno:       fault.ErrnoName(cfg.SendErrno),
		RecvFailRate:    cfg.RecvFailRate,
		RecvShortRate:   cfg.RecvShortRate,
		RecvErrno:       fault.ErrnoName(cfg.RecvErrno),
		OpenFailRate:    cfg.OpenFailRate,
		OpenErrno:       fault.ErrnoName(cfg.OpenErrno),
		LatencyMs:       cfg.Latency.Milliseconds(),
		TargetPort:      cfg.TargetPort,
		LogFile:         cfg.LogFile,
	}
}

func init() {
	configCmd.Flags().StringVarP(&configFile, "file", "f", "", "Load configuration from a YAML/JSON profile file")
	rootCmd.AddCommand(configCmd)
}
