package fault

import (
	"golang.org/x/sys/unix"
)

// Ops is the real operation provider: one callable per intercepted operation.
// The injector resolves a provider once at construction and only ever forwards
// to it; nothing here calls back into the injector.
//
// Implementations are expected to keep the platform semantics of the
// primitives they shadow. Tests substitute a fake.
type Ops interface {
	Connect(fd int, sa unix.Sockaddr) error
	Send(fd int, p []byte, flags int) (int, error)
	Recv(fd int, p []byte, flags int) (int, error)
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Open(path string, flags int, mode uint32) (int, error)
	Close(fd int) error
}

// SysOps is the default provider, issuing real syscalls through
// golang.org/x/sys/unix.
type SysOps struct{}

func (SysOps) Connect(fd int, sa unix.Sockaddr) error {
	return unix.Connect(fd, sa)
}

func (SysOps) Send(fd int, p []byte, flags int) (int, error) {
	// send(2) is sendto(2) with no destination.
	return unix.SendmsgN(fd, p, nil, nil, flags)
}

func (SysOps) Recv(fd int, p []byte, flags int) (int, error) {
	n, _, err := unix.Recvfrom(fd, p, flags)
	return n, err
}

func (SysOps) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (SysOps) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (SysOps) Open(path string, flags int, mode uint32) (int, error) {
	return unix.Open(path, flags, mode)
}

func (SysOps) Close(fd int) error {
	return unix.Close(fd)
}
