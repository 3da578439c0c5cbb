package netfault

import (
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/getmockd/faultd/pkg/fault"
)

// echoListener accepts one connection and writes payload to it.
func echoListener(t *testing.T, payload []byte) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		if len(payload) > 0 {
			c.Write(payload)
		}
		io.Copy(io.Discard, c)
	}()

	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestDialInjectedRefusal(t *testing.T) {
	_, port := echoListener(t, nil)

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.ConnectFailRate = 1.0
	cfg.ConnectErrno = unix.ECONNREFUSED
	cfg.TargetPort = port
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	_, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.Error(t, err)

	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "dial", opErr.Op)
	assert.True(t, errors.Is(err, unix.ECONNREFUSED))
	assert.Equal(t, uint64(1), in.Stats().ConnectInjected)
}

func TestDialBypassesOtherPorts(t *testing.T) {
	_, port := echoListener(t, nil)

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.ConnectFailRate = 1.0
	cfg.SendFailRate = 1.0
	cfg.TargetPort = port + 1 // filter on a different port
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err, "non-matching port dials through untouched")
	defer c.Close()

	// Writes on the non-targeted connection bypass injection too.
	_, err = c.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Zero(t, in.Stats().SendInjected)
}

func TestConnWriteInjected(t *testing.T) {
	_, port := echoListener(t, nil)

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.SendFailRate = 1.0
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, unix.EPIPE))
	assert.Equal(t, uint64(1), in.Stats().SendInjected)
}

func TestConnShortRead(t *testing.T) {
	payload := []byte("0123456789")
	_, port := echoListener(t, payload)

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.RecvShortRate = 1.0
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err)
	defer c.Close()

	buf := make([]byte, 64)
	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Less(t, n, len(payload), "reported length is truncated")
	assert.Equal(t, payload[:n], buf[:n], "reported prefix holds real data")
	assert.Equal(t, uint64(1), in.Stats().ShortReads)
}

func TestConnReadFailInjected(t *testing.T) {
	_, port := echoListener(t, []byte("data"))

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.RecvFailRate = 1.0
	cfg.RecvErrno = unix.ECONNRESET
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err)
	defer c.Close()

	buf := make([]byte, 16)
	_, err = c.Read(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, unix.ECONNRESET))
}

func TestDialTracksAndCloseUntracks(t *testing.T) {
	_, port := echoListener(t, nil)

	cfg := fault.DefaultConfig()
	cfg.Enabled = true
	cfg.TargetPort = port
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err)

	fc, ok := c.(*Conn)
	require.True(t, ok)
	if fc.fd >= 0 {
		assert.True(t, in.Tracked(fc.fd), "matching dial registers the descriptor")
		require.NoError(t, c.Close())
		assert.False(t, in.Tracked(fc.fd), "close unregisters it")
	}
}

func TestDisabledDialerIsTransparent(t *testing.T) {
	_, port := echoListener(t, []byte("pong"))

	cfg := fault.DefaultConfig() // disabled
	cfg.ConnectFailRate = 1.0
	cfg.SendFailRate = 1.0
	in := fault.New(cfg)

	d := &Dialer{Injector: in}
	c, err := d.Dial("tcp", net.JoinHostPort("127.0.0.1", portString(port)))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, fault.Snapshot{}, in.Stats())
}

func TestRemotePort(t *testing.T) {
	assert.Equal(t, 8080, remotePort("127.0.0.1:8080"))
	assert.Equal(t, 443, remotePort("[::1]:443"))
	assert.Zero(t, remotePort("no-port"))
	assert.Zero(t, remotePort("host:abc"))
}

func portString(port int) string {
	return strconv.Itoa(port)
}
