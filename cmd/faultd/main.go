// faultd CLI - inspect fault injection configuration, profiles and logs
package main

import (
	"os"

	"github.com/getmockd/faultd/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := cli.Execute(cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}); err != nil {
		os.Exit(1)
	}
}
