// Package frontend drives the SEC (tone, voltage and DiSEqC) lines of a DVB
// frontend through its ioctl interface.
package frontend

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/w1xm/diseqc_interface/diseqc"
)

// Tone mirrors enum fe_sec_tone_mode.
type Tone int

const (
	ToneOn Tone = iota
	ToneOff
)

func (t Tone) String() string {
	switch t {
	case ToneOn:
		return "ON"
	case ToneOff:
		return "OFF"
	}
	return fmt.Sprintf("Tone(%d)", int(t))
}

// Voltage mirrors enum fe_sec_voltage.
type Voltage int

const (
	Voltage13 Voltage = iota
	Voltage18
	VoltageOff
)

func (v Voltage) String() string {
	switch v {
	case Voltage13:
		return "13V"
	case Voltage18:
		return "18V"
	case VoltageOff:
		return "OFF"
	}
	return fmt.Sprintf("Voltage(%d)", int(v))
}

// Handle is the set of frontend operations a DiSEqC session needs. Every
// call blocks until the driver returns.
type Handle interface {
	SetTone(tone Tone) error
	SetVoltage(voltage Voltage) error
	SendMasterCommand(cmd diseqc.MasterCommand) error
	RecvSlaveReply(timeout time.Duration) (diseqc.SlaveReply, error)
}

// Device issues ioctl requests against an open frontend. IoctlValue passes
// value directly as the argument, IoctlBuffer passes buf as an in/out record.
type Device interface {
	IoctlValue(req uint32, value int) error
	IoctlBuffer(req uint32, buf []byte) error
	Close() error
}

// ErrNotSupported is matched by errors from requests the frontend driver
// does not implement, e.g. receiving replies on a frontend without
// bidirectional DiSEqC (versions 2 and above).
var ErrNotSupported = errors.New("operation not supported by frontend")

// IoError describes a failed frontend request.
type IoError struct {
	Op      string
	Request uint32
	Err     error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %s(%#x): %v", e.Op, RequestName(e.Request), e.Request, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotSupported when the driver answered EOPNOTSUPP.
func (e *IoError) Is(target error) bool {
	return target == ErrNotSupported && errors.Is(e.Err, syscall.EOPNOTSUPP)
}

// Frontend implements Handle on top of a Device.
type Frontend struct {
	dev Device
}

// New wraps an open device.
func New(dev Device) *Frontend {
	return &Frontend{dev: dev}
}

// Close closes the underlying device.
func (f *Frontend) Close() error {
	return f.dev.Close()
}

// SetTone issues FE_SET_TONE.
func (f *Frontend) SetTone(tone Tone) error {
	if err := f.dev.IoctlValue(FE_SET_TONE, int(tone)); err != nil {
		return &IoError{Op: fmt.Sprintf("setting tone %s", tone), Request: FE_SET_TONE, Err: err}
	}
	return nil
}

// SetVoltage issues FE_SET_VOLTAGE.
func (f *Frontend) SetVoltage(voltage Voltage) error {
	if err := f.dev.IoctlValue(FE_SET_VOLTAGE, int(voltage)); err != nil {
		return &IoError{Op: fmt.Sprintf("setting voltage %s", voltage), Request: FE_SET_VOLTAGE, Err: err}
	}
	return nil
}

// SendMasterCommand issues FE_DISEQC_SEND_MASTER_CMD with the 7 byte record.
func (f *Frontend) SendMasterCommand(cmd diseqc.MasterCommand) error {
	buf, err := cmd.MarshalBinary()
	if err != nil {
		return err
	}
	if err := f.dev.IoctlBuffer(FE_DISEQC_SEND_MASTER_CMD, buf); err != nil {
		return &IoError{Op: fmt.Sprintf("sending %s", cmd), Request: FE_DISEQC_SEND_MASTER_CMD, Err: err}
	}
	return nil
}

// RecvSlaveReply issues FE_DISEQC_RECV_SLAVE_REPLY, passing timeout in
// whole milliseconds.
func (f *Frontend) RecvSlaveReply(timeout time.Duration) (diseqc.SlaveReply, error) {
	req := diseqc.SlaveReply{Timeout: int32(timeout / time.Millisecond)}
	buf, err := req.MarshalBinary()
	if err != nil {
		return diseqc.SlaveReply{}, err
	}
	if err := f.dev.IoctlBuffer(FE_DISEQC_RECV_SLAVE_REPLY, buf); err != nil {
		return diseqc.SlaveReply{}, &IoError{Op: "receiving reply", Request: FE_DISEQC_RECV_SLAVE_REPLY, Err: err}
	}
	var reply diseqc.SlaveReply
	if err := reply.UnmarshalBinary(buf); err != nil {
		return diseqc.SlaveReply{}, fmt.Errorf("receiving reply: %w", err)
	}
	return reply, nil
}
