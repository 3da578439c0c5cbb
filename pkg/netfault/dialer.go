package netfault

import (
	"context"
	"net"
	"strconv"
	"syscall"

	"github.com/getmockd/faultd/pkg/fault"
)

// Dialer wraps net.Dialer with fault injection. The zero value dials with
// default options through the process-wide injector.
type Dialer struct {
	// Injector decides the faults. Nil means the process-wide injector.
	Injector *fault.Injector

	// Dialer performs the real dialing.
	Dialer net.Dialer
}

func (d *Dialer) injector() *fault.Injector {
	if d.Injector != nil {
		return d.Injector
	}
	return fault.Default()
}

// Dial connects to the address on the named network.
func (d *Dialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

// DialContext connects to the address, subject to injection. A target-matching
// dial may fail with the configured connect errno before any packet leaves;
// on success the returned Conn carries the injector for read/write faults and
// the real descriptor is registered while the connection lives.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	in := d.injector()
	if !in.Enabled() {
		return d.Dialer.DialContext(ctx, network, address)
	}

	targeted := in.TargetsPort(remotePort(address))
	in.Delay()
	if targeted {
		if errno := in.InjectConnect(-1, address); errno != nil {
			return nil, &net.OpError{Op: "dial", Net: network, Err: errno}
		}
	}

	c, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	fd := rawFD(c)
	if targeted {
		in.Track(fd)
	}
	return &Conn{
		Conn:     c,
		in:       in,
		fd:       fd,
		targeted: targeted,
		filtered: in.Config().TargetPort != 0,
	}, nil
}

// remotePort extracts the port from a host:port address. Unparseable
// addresses report port 0, which only matches an unfiltered injector.
func remotePort(address string) int {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// rawFD extracts the underlying descriptor, or -1 when the connection does
// not expose one (the registry ignores negative descriptors).
func rawFD(c net.Conn) int {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return -1
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return -1
	}
	fd := -1
	_ = rc.Control(func(f uintptr) { fd = int(f) })
	return fd
}
