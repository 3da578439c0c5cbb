package fault

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// The process-wide injector is built lazily on first use, exactly once,
// regardless of how many goroutines race the first call. sync.Once gives
// every later reader a happens-before view of the fully populated injector.
var (
	defaultOnce     sync.Once
	defaultInjector *Injector
	defaultBuilt    atomic.Bool
)

// Default returns the process-wide injector, building it from the FAULT_*
// environment on first use with the syscall-backed provider.
func Default() *Injector {
	defaultOnce.Do(func() {
		defaultInjector = New(FromEnv())
		defaultBuilt.Store(true)
	})
	return defaultInjector
}

// Shutdown tears down the process-wide injector: the [STATS] summary is
// written if logging is active and the sink is closed. Fires at most once;
// if the injector was never used, nothing is initialized and nothing is
// written. Call it from a defer in main or an exit hook.
func Shutdown() {
	if defaultBuilt.Load() {
		defaultInjector.Close()
	}
}

// Connect routes connect(2) through the process-wide injector.
func Connect(fd int, sa unix.Sockaddr) error {
	return Default().Connect(fd, sa)
}

// Send routes send(2) through the process-wide injector.
func Send(fd int, p []byte, flags int) (int, error) {
	return Default().Send(fd, p, flags)
}

// Recv routes recv(2) through the process-wide injector.
func Recv(fd int, p []byte, flags int) (int, error) {
	return Default().Recv(fd, p, flags)
}

// Read routes read(2) through the process-wide injector.
func Read(fd int, p []byte) (int, error) {
	return Default().Read(fd, p)
}

// Write routes write(2) through the process-wide injector.
func Write(fd int, p []byte) (int, error) {
	return Default().Write(fd, p)
}

// Open routes open(2) through the process-wide injector.
func Open(path string, flags int, mode ...uint32) (int, error) {
	return Default().Open(path, flags, mode...)
}

// Close routes close(2) through the process-wide injector. The descriptor is
// unregistered even when injection is disabled.
func Close(fd int) error {
	return Default().CloseFD(fd)
}
