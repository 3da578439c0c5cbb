package fault

import (
	"sort"
	"time"

	"golang.org/x/sys/unix"
)

// Profile is a pre-built injection configuration that users can apply by
// name instead of setting individual FAULT_* variables.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Config      Config `json:"config"`
}

var builtinProfiles = map[string]Profile{
	"flaky-network": {
		Name:        "flaky-network",
		Description: "Occasional connect timeouts, dropped sends and reset receives",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.ConnectFailRate = 0.05
			c.SendFailRate = 0.02
			c.RecvFailRate = 0.02
			c.RecvShortRate = 0.05
			c.Latency = 20 * time.Millisecond
			return c
		}(),
	},
	"refused": {
		Name:        "refused",
		Description: "Every connect refused immediately",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.ConnectFailRate = 1.0
			c.ConnectErrno = unix.ECONNREFUSED
			return c
		}(),
	},
	"unreachable": {
		Name:        "unreachable",
		Description: "Network unreachable on every connect",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.ConnectFailRate = 1.0
			c.ConnectErrno = unix.ENETUNREACH
			return c
		}(),
	},
	"partial-reads": {
		Name:        "partial-reads",
		Description: "Every multi-byte receive reports a truncated length",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.RecvShortRate = 1.0
			return c
		}(),
	},
	"slow-link": {
		Name:        "slow-link",
		Description: "High-latency link, no failures",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.Latency = 250 * time.Millisecond
			return c
		}(),
	},
	"broken-pipe": {
		Name:        "broken-pipe",
		Description: "Frequent EPIPE on sends and writes",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.SendFailRate = 0.25
			return c
		}(),
	},
	"disk-pressure": {
		Name:        "disk-pressure",
		Description: "Opens fail intermittently with ENOSPC",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.OpenFailRate = 0.2
			c.OpenErrno = unix.ENOSPC
			return c
		}(),
	},
	"readonly-fs": {
		Name:        "readonly-fs",
		Description: "Every open fails with EROFS",
		Config: func() Config {
			c := DefaultConfig()
			c.Enabled = true
			c.OpenFailRate = 1.0
			c.OpenErrno = unix.EROFS
			return c
		}(),
	},
}

// ListProfiles returns all built-in profiles sorted alphabetically by name.
func ListProfiles() []Profile {
	profiles := make([]Profile, 0, len(builtinProfiles))
	for _, p := range builtinProfiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// GetProfile returns a built-in profile by name.
func GetProfile(name string) (Profile, bool) {
	p, ok := builtinProfiles[name]
	return p, ok
}

// ProfileNames returns the names of all built-in profiles sorted
// alphabetically.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
