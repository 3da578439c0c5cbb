package fault

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/getmockd/faultd/pkg/logging"
)

// defaultCreateMode is used when open carries a creation flag but the caller
// omitted the optional mode argument.
const defaultCreateMode uint32 = 0o666

// Injector is the fault decision and dispatch engine. It owns the immutable
// configuration, the seeded sampler, the descriptor registry, the counters
// and the event sink. All methods are safe for concurrent use.
type Injector struct {
	cfg   Config
	ops   Ops
	rng   *sampler
	fds   *fdSet
	stats *Stats
	log   *eventLog
	diag  *slog.Logger

	seed      int64
	closeOnce sync.Once
}

// Option customizes an Injector at construction.
type Option func(*Injector)

// WithOps substitutes the real operation provider. Tests use this to observe
// forwarding without touching the platform.
func WithOps(ops Ops) Option {
	return func(in *Injector) { in.ops = ops }
}

// WithLogger sets the diagnostic logger. This is distinct from the event
// sink: diagnostics cover the injector's own problems (an unopenable log
// file), the sink records injections in the contractual line format.
func WithLogger(l *slog.Logger) Option {
	return func(in *Injector) {
		if l != nil {
			in.diag = l
		}
	}
}

// WithSeed pins the sampler seed for reproducible injection sequences.
func WithSeed(seed int64) Option {
	return func(in *Injector) { in.seed = seed }
}

// New builds an Injector from a configuration. The configuration is clamped,
// copied and never mutated again. If a log file is configured and enabled,
// the startup block is written immediately.
func New(cfg Config, opts ...Option) *Injector {
	cfg.Clamp()
	in := &Injector{
		cfg:   cfg,
		ops:   SysOps{},
		diag:  logging.Nop(),
		seed:  processSeed(),
		fds:   newFDSet(),
		stats: &Stats{},
	}
	for _, o := range opts {
		o(in)
	}
	in.rng = newSampler(in.seed)
	in.log = openEventLog(cfg.LogFile, in.diag)
	if cfg.Enabled {
		in.log.initBlock(cfg)
	}
	return in
}

// Enabled reports whether injection is globally enabled.
func (in *Injector) Enabled() bool { return in.cfg.Enabled }

// Config returns a copy of the effective configuration.
func (in *Injector) Config() Config { return in.cfg }

// Stats returns a snapshot of the injection counters.
func (in *Injector) Stats() Snapshot { return in.stats.Snapshot() }

// TargetsPort reports whether a remote port passes the target filter.
func (in *Injector) TargetsPort(port int) bool { return in.cfg.MatchesPort(port) }

// Tracked reports whether a descriptor is currently registered as a targeted
// socket.
func (in *Injector) Tracked(fd int) bool { return in.fds.has(fd) }

// Track registers a descriptor as a targeted socket. Connect does this
// automatically; alternative front ends (such as a dialer wrapper) call it
// for descriptors they manage themselves.
func (in *Injector) Track(fd int) { in.fds.mark(fd) }

// Untrack removes a descriptor from the registry.
func (in *Injector) Untrack(fd int) { in.fds.unmark(fd) }

// Delay sleeps the configured latency on the calling goroutine. The sleep is
// synchronous and always runs to completion.
func (in *Injector) Delay() {
	if in.cfg.Latency > 0 {
		time.Sleep(in.cfg.Latency)
	}
}

// Close fires the teardown exactly once: the [STATS] summary if logging is
// active, then the sink is closed. Safe to call multiple times.
func (in *Injector) Close() {
	in.closeOnce.Do(func() {
		if in.log.active() {
			in.log.printf("%s", in.stats.summaryLine())
			in.log.close()
		}
	})
}

// InjectConnect rolls the connect failure rate. On a trigger it logs, counts
// and returns the configured errno; otherwise it returns nil and the caller
// proceeds with the real connect.
func (in *Injector) InjectConnect(fd int, endpoint string) error {
	if !in.rng.roll(in.cfg.ConnectFailRate) {
		return nil
	}
	in.stats.connectInjected.Add(1)
	in.log.event("connect", fd, fmt.Sprintf("-> %s (addr=%s)", ErrnoName(in.cfg.ConnectErrno), endpoint))
	return in.cfg.ConnectErrno
}

// InjectSend rolls the send failure rate for an n-byte transmit.
func (in *Injector) InjectSend(fd, n int) error {
	if !in.rng.roll(in.cfg.SendFailRate) {
		return nil
	}
	in.stats.sendInjected.Add(1)
	in.log.event("send", fd, fmt.Sprintf("-> %s (len=%d)", ErrnoName(in.cfg.SendErrno), n))
	return in.cfg.SendErrno
}

// injectWrite is InjectSend with the write op name in the log line.
func (in *Injector) injectWrite(fd, n int) error {
	if !in.rng.roll(in.cfg.SendFailRate) {
		return nil
	}
	in.stats.sendInjected.Add(1)
	in.log.event("write", fd, fmt.Sprintf("-> %s (count=%d)", ErrnoName(in.cfg.SendErrno), n))
	return in.cfg.SendErrno
}

// InjectRecv rolls the recv failure rate against the call itself, before any
// real receive happens.
func (in *Injector) InjectRecv(fd int) error {
	return in.injectRecvOp("recv", fd)
}

func (in *Injector) injectRecvOp(op string, fd int) error {
	if !in.rng.roll(in.cfg.RecvFailRate) {
		return nil
	}
	in.stats.recvInjected.Add(1)
	in.log.event(op, fd, "-> "+ErrnoName(in.cfg.RecvErrno))
	return in.cfg.RecvErrno
}

// InjectShortRead rolls the short-read rate against a real n-byte result.
// On a trigger it returns the truncated length to report and true. Results of
// one byte or less are never shortened.
func (in *Injector) InjectShortRead(fd, n int) (int, bool) {
	return in.injectShortReadOp("recv", fd, n)
}

func (in *Injector) injectShortReadOp(op string, fd, n int) (int, bool) {
	if n <= 1 || !in.rng.roll(in.cfg.RecvShortRate) {
		return n, false
	}
	short := in.rng.shortReadLen(n)
	in.stats.shortReads.Add(1)
	in.log.event(op, fd, fmt.Sprintf("short read %d -> %d", n, short))
	return short, true
}

// InjectOpen rolls the open failure rate for a path. Open injection applies
// to every call; it is logged but not counted.
func (in *Injector) InjectOpen(path string) error {
	if !in.rng.roll(in.cfg.OpenFailRate) {
		return nil
	}
	in.log.event("open", -1, fmt.Sprintf("-> %s (path=%s)", ErrnoName(in.cfg.OpenErrno), path))
	return in.cfg.OpenErrno
}

// Connect intercepts connect(2). A target-matching descriptor is registered
// before the decision, so a failed connect attempt still leaves later writes
// on that descriptor eligible for injection.
func (in *Injector) Connect(fd int, sa unix.Sockaddr) error {
	if !in.cfg.Enabled {
		return in.ops.Connect(fd, sa)
	}
	targeted := in.cfg.matchesTarget(sa)
	if targeted {
		in.fds.mark(fd)
	}
	in.Delay()
	if targeted {
		if err := in.InjectConnect(fd, formatSockaddr(sa)); err != nil {
			return err
		}
	}
	return in.ops.Connect(fd, sa)
}

// Send intercepts send(2). With a port filter active, untracked descriptors
// bypass injection entirely: no latency, no rate check.
func (in *Injector) Send(fd int, p []byte, flags int) (int, error) {
	if !in.cfg.Enabled {
		return in.ops.Send(fd, p, flags)
	}
	if in.cfg.TargetPort != 0 && !in.fds.has(fd) {
		return in.ops.Send(fd, p, flags)
	}
	in.Delay()
	if err := in.InjectSend(fd, len(p)); err != nil {
		return 0, err
	}
	return in.ops.Send(fd, p, flags)
}

// Recv intercepts recv(2) with two independent decisions: a failure roll
// against the call itself, then, only after a real successful receive, a
// short-read roll against the returned length. The buffer keeps every byte
// the real call delivered; only the reported count shrinks.
func (in *Injector) Recv(fd int, p []byte, flags int) (int, error) {
	if !in.cfg.Enabled {
		return in.ops.Recv(fd, p, flags)
	}
	if in.cfg.TargetPort != 0 && !in.fds.has(fd) {
		return in.ops.Recv(fd, p, flags)
	}
	in.Delay()
	if err := in.InjectRecv(fd); err != nil {
		return 0, err
	}
	n, err := in.ops.Recv(fd, p, flags)
	if err == nil {
		if short, ok := in.InjectShortRead(fd, n); ok {
			return short, nil
		}
	}
	return n, err
}

// Write intercepts write(2). Injection only applies to descriptors above the
// standard streams that are registered as targeted sockets; everything else
// passes through untouched. No latency is added on this path.
func (in *Injector) Write(fd int, p []byte) (int, error) {
	if in.cfg.Enabled && fd > 2 && in.fds.has(fd) {
		if err := in.injectWrite(fd, len(p)); err != nil {
			return 0, err
		}
	}
	return in.ops.Write(fd, p)
}

// Read intercepts read(2) with the same two-stage logic as Recv, but gated on
// the descriptor being above the standard streams and registered as targeted.
// Latency applies only when the gate passes.
func (in *Injector) Read(fd int, p []byte) (int, error) {
	if !in.cfg.Enabled {
		return in.ops.Read(fd, p)
	}
	gated := fd > 2 && in.fds.has(fd)
	if gated {
		in.Delay()
		if err := in.injectRecvOp("read", fd); err != nil {
			return 0, err
		}
	}
	n, err := in.ops.Read(fd, p)
	if gated && err == nil {
		if short, ok := in.injectShortReadOp("read", fd, n); ok {
			return short, nil
		}
	}
	return n, err
}

// Open intercepts open(2). The variadic mode is only consulted when a
// creation flag is present; with a creation flag and no mode, the platform
// default applies. Open injection ignores the target filter; it covers
// every path.
func (in *Injector) Open(path string, flags int, mode ...uint32) (int, error) {
	var m uint32
	if flags&unix.O_CREAT != 0 {
		m = defaultCreateMode
		if len(mode) > 0 {
			m = mode[0]
		}
	}
	if !in.cfg.Enabled {
		return in.ops.Open(path, flags, m)
	}
	if err := in.InjectOpen(path); err != nil {
		return -1, err
	}
	return in.ops.Open(path, flags, m)
}

// CloseFD intercepts close(2). The descriptor is unregistered first,
// unconditionally, even with injection disabled, then the real close runs.
func (in *Injector) CloseFD(fd int) error {
	in.fds.unmark(fd)
	return in.ops.Close(fd)
}

// formatSockaddr renders an endpoint for log lines.
func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return "?"
}
