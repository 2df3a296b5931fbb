//go:build !linux

package frontend

import (
	"errors"
	"fmt"
)

// LocalDevice is unavailable outside linux.
type LocalDevice struct{}

// Open always fails: DVB frontends are a linux interface.
func Open(adapter, frontend int) (*LocalDevice, error) {
	return nil, fmt.Errorf("opening %q: %w", Path(adapter, frontend), errors.ErrUnsupported)
}

func (d *LocalDevice) IoctlValue(req uint32, value int) error { return errors.ErrUnsupported }

func (d *LocalDevice) IoctlBuffer(req uint32, buf []byte) error { return errors.ErrUnsupported }

func (d *LocalDevice) Close() error { return nil }
