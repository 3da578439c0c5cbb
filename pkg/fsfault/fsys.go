// Package fsfault is the filesystem front end for the fault injection
// engine. Production code uses [OSFS], which delegates to the os package;
// tests wrap it in [FaultFS] so that open paths can be made to fail with a
// configured errno before the filesystem is ever touched.
package fsfault

import (
	"io/fs"
	"os"

	"github.com/getmockd/faultd/pkg/fault"
)

// FS abstracts the file-opening operations applications route through the
// injector. It covers opening only; reads on an opened file are the
// descriptor layer's business.
type FS interface {
	// Open opens the named file for reading.
	Open(name string) (*os.File, error)

	// OpenFile is the generalized open call.
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)
}

// OSFS implements [FS] by delegating to the os package.
type OSFS struct{}

// Open delegates to [os.Open].
func (OSFS) Open(name string) (*os.File, error) {
	return os.Open(name)
}

// OpenFile delegates to [os.OpenFile].
func (OSFS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

// ReadFile delegates to [os.ReadFile].
func (OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// FaultFS wraps an [FS] with open-failure injection. Every open-like call
// rolls the configured open failure rate; a trigger returns *fs.PathError
// carrying the configured errno and the base filesystem is never touched.
type FaultFS struct {
	// Base is the real filesystem. Nil means [OSFS].
	Base FS

	// Injector decides the faults. Nil means the process-wide injector.
	Injector *fault.Injector
}

func (f FaultFS) base() FS {
	if f.Base != nil {
		return f.Base
	}
	return OSFS{}
}

func (f FaultFS) injector() *fault.Injector {
	if f.Injector != nil {
		return f.Injector
	}
	return fault.Default()
}

func (f FaultFS) inject(name string) error {
	in := f.injector()
	if !in.Enabled() {
		return nil
	}
	if errno := in.InjectOpen(name); errno != nil {
		return &fs.PathError{Op: "open", Path: name, Err: errno}
	}
	return nil
}

// Open opens the named file, subject to injection.
func (f FaultFS) Open(name string) (*os.File, error) {
	if err := f.inject(name); err != nil {
		return nil, err
	}
	return f.base().Open(name)
}

// OpenFile opens the named file, subject to injection.
func (f FaultFS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if err := f.inject(name); err != nil {
		return nil, err
	}
	return f.base().OpenFile(name, flag, perm)
}

// ReadFile reads the named file, subject to injection on the implied open.
func (f FaultFS) ReadFile(name string) ([]byte, error) {
	if err := f.inject(name); err != nil {
		return nil, err
	}
	return f.base().ReadFile(name)
}
