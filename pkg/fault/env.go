package fault

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names recognized by FromEnv.
const (
	EnvEnabled         = "FAULT_INJECT_ENABLED"
	EnvConnectFailRate = "FAULT_CONNECT_FAIL_RATE"
	EnvConnectErrno    = "FAULT_CONNECT_ERRNO"
	EnvSendFailRate    = "FAULT_SEND_FAIL_RATE"
	EnvSendErrno       = "FAULT_SEND_ERRNO"
	EnvRecvFailRate    = "FAULT_RECV_FAIL_RATE"
	EnvRecvShortRate   = "FAULT_RECV_SHORT_RATE"
	EnvRecvErrno       = "FAULT_RECV_ERRNO"
	EnvOpenFailRate    = "FAULT_OPEN_FAIL_RATE"
	EnvOpenErrno       = "FAULT_OPEN_ERRNO"
	EnvLatencyMs       = "FAULT_LATENCY_MS"
	EnvTargetPort      = "FAULT_TARGET_PORT"
	EnvLogFile         = "FAULT_LOG_FILE"
)

// FromEnv builds a Config from the FAULT_* environment variables. It only
// overrides fields whose variable is present; absent keys keep the
// DefaultConfig values. Malformed values resolve to zero rather than failing:
// a fault injector must never take its host down over a typo.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvEnabled); v != "" {
		cfg.Enabled = v == "1" || v == "true"
	}

	if v := os.Getenv(EnvConnectFailRate); v != "" {
		cfg.ConnectFailRate = envFloat(v)
	}
	if v := os.Getenv(EnvConnectErrno); v != "" {
		cfg.ConnectErrno = ParseErrno(v)
	}

	if v := os.Getenv(EnvSendFailRate); v != "" {
		cfg.SendFailRate = envFloat(v)
	}
	if v := os.Getenv(EnvSendErrno); v != "" {
		cfg.SendErrno = ParseErrno(v)
	}

	if v := os.Getenv(EnvRecvFailRate); v != "" {
		cfg.RecvFailRate = envFloat(v)
	}
	if v := os.Getenv(EnvRecvShortRate); v != "" {
		cfg.RecvShortRate = envFloat(v)
	}
	if v := os.Getenv(EnvRecvErrno); v != "" {
		cfg.RecvErrno = ParseErrno(v)
	}

	if v := os.Getenv(EnvOpenFailRate); v != "" {
		cfg.OpenFailRate = envFloat(v)
	}
	if v := os.Getenv(EnvOpenErrno); v != "" {
		cfg.OpenErrno = ParseErrno(v)
	}

	if v := os.Getenv(EnvLatencyMs); v != "" {
		cfg.Latency = time.Duration(envInt(v)) * time.Millisecond
	}
	if v := os.Getenv(EnvTargetPort); v != "" {
		cfg.TargetPort = envInt(v)
	}

	cfg.LogFile = os.Getenv(EnvLogFile)

	cfg.Clamp()
	return cfg
}

// envFloat parses a rate value; non-numeric input resolves to 0.0.
func envFloat(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// envInt parses an integer value; non-numeric input resolves to 0.
func envInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
