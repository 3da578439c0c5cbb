package fault

import (
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// MaxTrackedFDs bounds the descriptor registry. Descriptors at or above this
// value are never tracked and never eligible for fd-gated injection.
const MaxTrackedFDs = 4096

// Config holds the injection parameters for one process. A Config is copied
// into the Injector at construction time and never mutated afterwards.
type Config struct {
	// Enabled turns the whole layer on. When false every operation is a
	// pure passthrough (Close still unregisters descriptors).
	Enabled bool

	// ConnectFailRate is the probability in [0,1] that a connect on a
	// target-matching address fails with ConnectErrno.
	ConnectFailRate float64
	ConnectErrno    unix.Errno

	// SendFailRate covers send and targeted write operations.
	SendFailRate float64
	SendErrno    unix.Errno

	// RecvFailRate covers recv and targeted read operations.
	// RecvShortRate is an independent probability that a successful
	// receive reports a truncated length.
	RecvFailRate  float64
	RecvShortRate float64
	RecvErrno     unix.Errno

	// OpenFailRate applies to every open, regardless of target filtering.
	OpenFailRate float64
	OpenErrno    unix.Errno

	// Latency is a synchronous delay added before injection decisions.
	Latency time.Duration

	// TargetPort restricts socket injection to connections whose remote
	// port equals this value. Zero means unfiltered.
	TargetPort int

	// LogFile, when non-empty, is opened in append mode as the event sink.
	// If the open fails, logging is disabled and the injector still works.
	LogFile string
}

// DefaultConfig returns the disabled baseline with the conventional errnos:
// ETIMEDOUT for connect, EPIPE for send, ECONNRESET for recv, ENOENT for open.
func DefaultConfig() Config {
	return Config{
		ConnectErrno: unix.ETIMEDOUT,
		SendErrno:    unix.EPIPE,
		RecvErrno:    unix.ECONNRESET,
		OpenErrno:    unix.ENOENT,
	}
}

// Clamp bounds all rate values into [0.0, 1.0] and clears negative latency
// and port values.
func (c *Config) Clamp() {
	c.ConnectFailRate = clampRate(c.ConnectFailRate)
	c.SendFailRate = clampRate(c.SendFailRate)
	c.RecvFailRate = clampRate(c.RecvFailRate)
	c.RecvShortRate = clampRate(c.RecvShortRate)
	c.OpenFailRate = clampRate(c.OpenFailRate)
	if c.Latency < 0 {
		c.Latency = 0
	}
	if c.TargetPort < 0 {
		c.TargetPort = 0
	}
}

func clampRate(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// MatchesPort reports whether a remote port passes the target filter.
// With no filter configured every port matches.
func (c Config) MatchesPort(port int) bool {
	return c.TargetPort == 0 || port == c.TargetPort
}

// matchesTarget applies the target filter to a socket address. Address
// families other than IPv4/IPv6 never match an active filter.
func (c Config) matchesTarget(sa unix.Sockaddr) bool {
	if c.TargetPort == 0 {
		return true
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return a.Port == c.TargetPort
	case *unix.SockaddrInet6:
		return a.Port == c.TargetPort
	}
	return false
}

// errnoByName is the recognized symbolic errno table. Names outside this
// table fall back to integer parsing.
var errnoByName = map[string]unix.Errno{
	"EPIPE":        unix.EPIPE,
	"ECONNRESET":   unix.ECONNRESET,
	"ECONNREFUSED": unix.ECONNREFUSED,
	"ETIMEDOUT":    unix.ETIMEDOUT,
	"ENETUNREACH":  unix.ENETUNREACH,
	"EHOSTUNREACH": unix.EHOSTUNREACH,
	"ENOENT":       unix.ENOENT,
	"EACCES":       unix.EACCES,
	"EIO":          unix.EIO,
	"ENOSPC":       unix.ENOSPC,
	"EROFS":        unix.EROFS,
}

// ParseErrno resolves a symbolic errno name or a raw integer string.
// Unrecognized input resolves to 0, never an error.
func ParseErrno(s string) unix.Errno {
	if e, ok := errnoByName[s]; ok {
		return e
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return unix.Errno(n)
}

// ErrnoName returns the symbolic name for a recognized errno, or "?" for
// anything outside the table. Used in log lines only.
func ErrnoName(e unix.Errno) string {
	for name, v := range errnoByName {
		if v == e {
			return name
		}
	}
	return "?"
}
