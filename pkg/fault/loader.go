package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

// Common errors for profile file loading.
var (
	ErrFileNotFound = errors.New("profile file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrInvalidJSON  = errors.New("invalid JSON syntax")
	ErrEmptyFile    = errors.New("profile file is empty")
)

// fileConfig is the on-disk representation of a Config. Errnos are symbolic
// names (or raw integers as strings), latency is in milliseconds, mirroring
// the environment interface.
type fileConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Connect struct {
		FailRate float64 `yaml:"failRate" json:"failRate"`
		Errno    string  `yaml:"errno,omitempty" json:"errno,omitempty"`
	} `yaml:"connect" json:"connect"`
	Send struct {
		FailRate float64 `yaml:"failRate" json:"failRate"`
		Errno    string  `yaml:"errno,omitempty" json:"errno,omitempty"`
	} `yaml:"send" json:"send"`
	Recv struct {
		FailRate  float64 `yaml:"failRate" json:"failRate"`
		ShortRate float64 `yaml:"shortRate" json:"shortRate"`
		Errno     string  `yaml:"errno,omitempty" json:"errno,omitempty"`
	} `yaml:"recv" json:"recv"`
	Open struct {
		FailRate float64 `yaml:"failRate" json:"failRate"`
		Errno    string  `yaml:"errno,omitempty" json:"errno,omitempty"`
	} `yaml:"open" json:"open"`
	LatencyMs  int    `yaml:"latencyMs" json:"latencyMs"`
	TargetPort int    `yaml:"targetPort" json:"targetPort"`
	LogFile    string `yaml:"logFile,omitempty" json:"logFile,omitempty"`
}

// LoadFile reads a Config from a YAML or JSON profile file. The format is
// detected by extension (.yaml/.yml for YAML, otherwise JSON). Missing errno
// fields keep the DefaultConfig values; present but unrecognized names resolve
// to 0, matching the environment parse rules.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	if len(data) == 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var fc fileConfig
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	} else {
		if err := json.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	return fc.toConfig(), nil
}

func (fc fileConfig) toConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = fc.Enabled
	cfg.ConnectFailRate = fc.Connect.FailRate
	if fc.Connect.Errno != "" {
		cfg.ConnectErrno = ParseErrno(fc.Connect.Errno)
	}
	cfg.SendFailRate = fc.Send.FailRate
	if fc.Send.Errno != "" {
		cfg.SendErrno = ParseErrno(fc.Send.Errno)
	}
	cfg.RecvFailRate = fc.Recv.FailRate
	cfg.RecvShortRate = fc.Recv.ShortRate
	if fc.Recv.Errno != "" {
		cfg.RecvErrno = ParseErrno(fc.Recv.Errno)
	}
	cfg.OpenFailRate = fc.Open.FailRate
	if fc.Open.Errno != "" {
		cfg.OpenErrno = ParseErrno(fc.Open.Errno)
	}
	cfg.Latency = time.Duration(fc.LatencyMs) * time.Millisecond
	cfg.TargetPort = fc.TargetPort
	cfg.LogFile = fc.LogFile
	cfg.Clamp()
	return cfg
}

// EnvExports renders a Config as shell export lines for the FAULT_*
// variables, suitable for eval in a test harness.
func EnvExports(cfg Config) []string {
	lines := []string{
		exportLine(EnvEnabled, boolValue(cfg.Enabled)),
		exportLine(EnvConnectFailRate, fmt.Sprintf("%g", cfg.ConnectFailRate)),
		exportLine(EnvConnectErrno, errnoValue(cfg.ConnectErrno)),
		exportLine(EnvSendFailRate, fmt.Sprintf("%g", cfg.SendFailRate)),
		exportLine(EnvSendErrno, errnoValue(cfg.SendErrno)),
		exportLine(EnvRecvFailRate, fmt.Sprintf("%g", cfg.RecvFailRate)),
		exportLine(EnvRecvShortRate, fmt.Sprintf("%g", cfg.RecvShortRate)),
		exportLine(EnvRecvErrno, errnoValue(cfg.RecvErrno)),
		exportLine(EnvOpenFailRate, fmt.Sprintf("%g", cfg.OpenFailRate)),
		exportLine(EnvOpenErrno, errnoValue(cfg.OpenErrno)),
		exportLine(EnvLatencyMs, fmt.Sprintf("%d", cfg.Latency.Milliseconds())),
		exportLine(EnvTargetPort, fmt.Sprintf("%d", cfg.TargetPort)),
	}
	if cfg.LogFile != "" {
		lines = append(lines, exportLine(EnvLogFile, cfg.LogFile))
	}
	return lines
}

func exportLine(key, value string) string {
	return fmt.Sprintf("export %s=%s", key, value)
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// errnoValue prefers the symbolic name; errnos outside the table fall back to
// their raw integer value, which FromEnv parses equally well.
func errnoValue(e unix.Errno) string {
	if name := ErrnoName(e); name != "?" {
		return name
	}
	return strconv.Itoa(int(e))
}
