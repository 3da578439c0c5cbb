package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// LogSummary aggregates a faultd event log.
type LogSummary struct {
	// Events counts per-operation INJECT lines.
	Events map[string]int `json:"events"`

	// Total is the number of INJECT lines seen.
	Total int `json:"total"`

	// Summary is the final [STATS] line, if the log has one.
	Summary string `json:"summary,omitempty"`
}

var eventLineRe = regexp.MustCompile(`^\[\d+\.\d+\] INJECT (\S+) \(fd=-?\d+\)`)

// ParseLog reads a faultd event log and tallies injection events by
// operation. Lines that match neither an event nor the stats summary are
// ignored, so interleaved foreign output is harmless.
func ParseLog(r io.Reader) (LogSummary, error) {
	summary := LogSummary{Events: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if m := eventLineRe.FindStringSubmatch(line); m != nil {
			summary.Events[m[1]]++
			summary.Total++
			continue
		}
		if strings.HasPrefix(line, "[STATS] ") {
			summary.Summary = line
		}
	}
	if err := scanner.Err(); err != nil {
		return LogSummary{}, fmt.Errorf("failed to read log: %w", err)
	}
	return summary, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats <logfile>",
	Short: "Summarize a faultd event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		summary, err := ParseLog(f)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		ops := make([]string, 0, len(summary.Events))
		for op := range summary.Events {
			ops = append(ops, op)
		}
		sort.Strings(ops)
		for _, op := range ops {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d\n", op, summary.Events[op])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total    %d\n", summary.Total)
		if summary.Summary != "" {
			fmt.Fprintln(cmd.OutOrStdout(), summary.Summary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
