package fault

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// eventLog is the append-only injection event sink. It is nil-safe: a nil
// receiver (logging disabled or the sink failed to open) drops every write.
// Each event is emitted with a single unbuffered Write call; interleaving
// guarantees across goroutines are whatever the underlying file provides.
type eventLog struct {
	f *os.File
}

// openEventLog opens the sink in append mode. An unopenable path disables
// logging; it is reported on the diagnostic logger and otherwise ignored.
func openEventLog(path string, diag *slog.Logger) *eventLog {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		diag.Warn("fault log unavailable, logging disabled", "path", path, "error", err)
		return nil
	}
	return &eventLog{f: f}
}

func (l *eventLog) active() bool {
	return l != nil && l.f != nil
}

// event writes one per-injection line: [<epoch-sec>.<millis>] INJECT <op> (fd=<n>) <detail>
func (l *eventLog) event(op string, fd int, detail string) {
	if !l.active() {
		return
	}
	now := time.Now()
	line := fmt.Sprintf("[%d.%03d] INJECT %s (fd=%d) %s\n",
		now.Unix(), now.Nanosecond()/int(time.Millisecond), op, fd, detail)
	l.f.Write([]byte(line))
}

// printf writes a raw formatted line, used for the [INIT] block and the
// [STATS] summary.
func (l *eventLog) printf(format string, args ...any) {
	if !l.active() {
		return
	}
	l.f.Write([]byte(fmt.Sprintf(format, args...)))
}

func (l *eventLog) close() {
	if l.active() {
		l.f.Close()
	}
}

// initBlock summarizes the effective configuration at startup.
func (l *eventLog) initBlock(cfg Config) {
	if !l.active() {
		return
	}
	l.printf("[INIT] faultd armed (pid=%d)\n", os.Getpid())
	l.printf("[INIT] connect_fail_rate=%.2f errno=%s\n", cfg.ConnectFailRate, ErrnoName(cfg.ConnectErrno))
	l.printf("[INIT] send_fail_rate=%.2f errno=%s\n", cfg.SendFailRate, ErrnoName(cfg.SendErrno))
	l.printf("[INIT] recv_fail_rate=%.2f recv_short_rate=%.2f errno=%s\n",
		cfg.RecvFailRate, cfg.RecvShortRate, ErrnoName(cfg.RecvErrno))
	l.printf("[INIT] open_fail_rate=%.2f errno=%s\n", cfg.OpenFailRate, ErrnoName(cfg.OpenErrno))
	if cfg.Latency > 0 {
		l.printf("[INIT] latency=%dms\n", cfg.Latency.Milliseconds())
	}
	if cfg.TargetPort != 0 {
		l.printf("[INIT] targeting port %d only\n", cfg.TargetPort)
	}
}
