package netfault

import (
	"net"

	"github.com/getmockd/faultd/pkg/fault"
)

// Conn is a net.Conn whose reads and writes pass through the injector. The
// same bypass rule as the descriptor layer applies: with a port filter
// configured, a connection that did not match the target port is left
// completely alone.
type Conn struct {
	net.Conn
	in       *fault.Injector
	fd       int
	targeted bool
	filtered bool
}

func (c *Conn) bypass() bool {
	return !c.in.Enabled() || (c.filtered && !c.targeted)
}

// Write transmits, subject to the send failure rate.
func (c *Conn) Write(p []byte) (int, error) {
	if c.bypass() {
		return c.Conn.Write(p)
	}
	c.in.Delay()
	if errno := c.in.InjectSend(c.fd, len(p)); errno != nil {
		return 0, &net.OpError{Op: "write", Net: "tcp", Err: errno}
	}
	return c.Conn.Write(p)
}

// Read receives with the two-stage decision: a failure roll against the call
// itself, then a short-read roll against the real result. On a short read the
// buffer keeps everything the real read delivered; only the reported count
// shrinks, exactly the partial-read boundary callers must already handle.
func (c *Conn) Read(p []byte) (int, error) {
	if c.bypass() {
		return c.Conn.Read(p)
	}
	c.in.Delay()
	if errno := c.in.InjectRecv(c.fd); errno != nil {
		return 0, &net.OpError{Op: "read", Net: "tcp", Err: errno}
	}
	n, err := c.Conn.Read(p)
	if err == nil {
		if short, ok := c.in.InjectShortRead(c.fd, n); ok {
			return short, nil
		}
	}
	return n, err
}

// Close unregisters the descriptor and closes the real connection. The
// unregister happens even when injection is disabled.
func (c *Conn) Close() error {
	c.in.Untrack(c.fd)
	return c.Conn.Close()
}
