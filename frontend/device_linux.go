//go:build linux

package frontend

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// LocalDevice is a frontend device node opened for writing.
type LocalDevice struct {
	fd   int
	path string
}

// Open opens /dev/dvb/adapterN/frontendM.
func Open(adapter, frontend int) (*LocalDevice, error) {
	path := Path(adapter, frontend)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return &LocalDevice{fd: fd, path: path}, nil
}

func (d *LocalDevice) String() string {
	return d.path
}

func (d *LocalDevice) IoctlValue(req uint32, value int) error {
	return unix.IoctlSetInt(d.fd, uint(req), value)
}

func (d *LocalDevice) IoctlBuffer(req uint32, buf []byte) error {
	if err := CheckBuffer(req, buf); err != nil {
		return err
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *LocalDevice) Close() error {
	return unix.Close(d.fd)
}
