// Package fault is a deterministic-probabilistic fault injection layer for
// socket and file I/O. It sits between an application (or an interposition
// shim) and the platform's I/O primitives, corrupting their outcomes
// (refused connects, failed sends and receives, short reads, failed opens,
// added latency) to exercise error-handling and retry paths under test.
//
// # Architecture
//
// An [Injector] composes four pieces:
//
//   - a [Config], immutable once the injector is built, usually loaded from
//     the FAULT_* environment variables via [FromEnv]
//   - a seeded probability sampler for injection decisions
//   - a bounded registry of file descriptors belonging to targeted sockets
//   - an optional append-only event log plus injection counters
//
// Each intercepted operation (Connect, Send, Recv, Read, Write, Open, Close)
// applies the target filter, sleeps the configured latency, rolls the
// operation's failure rate, and either short-circuits with the configured
// errno or forwards to the real implementation supplied by an [Ops] provider.
// The default provider, [SysOps], issues real syscalls via golang.org/x/sys.
//
// # Process-wide use
//
// Interposition shims that cannot thread an Injector through their call sites
// use the package-level wrappers, which lazily build one injector per process
// from the environment:
//
//	err := fault.Connect(fd, &unix.SockaddrInet4{Port: 80, Addr: addr})
//	...
//	defer fault.Shutdown() // writes the [STATS] summary line
//
// # Environment
//
//	FAULT_INJECT_ENABLED=1 FAULT_CONNECT_FAIL_RATE=0.1 \
//	FAULT_CONNECT_ERRNO=ECONNREFUSED FAULT_TARGET_PORT=80 \
//	FAULT_LOG_FILE=/tmp/faultd.log ./myapp
//
// Malformed values never fail: they resolve to safe defaults. An unopenable
// log file disables logging rather than aborting. Nothing in this package
// terminates the hosting process; unexpected states degrade to passthrough.
//
// # Safety
//
// Fault injection is a test-time tool. Keep it disabled outside test runs and
// prefer low rates plus a target port filter so only the connection under
// study is disturbed.
package fault
