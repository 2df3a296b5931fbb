// Package positioner builds DiSEqC 1.2 commands for polar/azimuth positioners.
package positioner

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/w1xm/diseqc_interface/diseqc"
)

// Positioner opcodes.
const (
	OpHalt          = 0x60
	OpLimitsOff     = 0x63
	OpLimitEast     = 0x66
	OpLimitWest     = 0x67
	OpDriveEast     = 0x68
	OpDriveWest     = 0x69
	OpStorePosition = 0x6A
	OpGotoPosition  = 0x6B
	OpGotoAngle     = 0x6E
)

// Direction nibbles of the goto angle argument.
const (
	Clockwise        = 0xE0
	CounterClockwise = 0xD0
)

func command(bs ...byte) diseqc.Command {
	var full [8]byte
	copy(full[8-len(bs):], bs)
	return diseqc.Command(binary.BigEndian.Uint64(full[:]))
}

func positionerCommand(op byte, args ...byte) diseqc.Command {
	return command(append([]byte{diseqc.FramingCommand, diseqc.AddressPolar, op}, args...)...)
}

// MaxAngle is the largest magnitude the goto angle argument can carry:
// twelve bits of 1/16 degree steps.
const MaxAngle = float64(0xFFF) / 16

func sixteenths(magnitude float64) uint64 {
	whole := math.Floor(magnitude)
	return uint64(whole)<<4 + uint64(math.Round((magnitude-whole)*16))
}

// CheckAngle fails for angles AngleBytes cannot represent: non-finite
// values and magnitudes rounding past MaxAngle.
func CheckAngle(angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return fmt.Errorf("angle %v is not finite", angle)
	}
	if sixteenths(math.Abs(angle)) > 0xFFF {
		return fmt.Errorf("angle %v out of range ±%v", angle, MaxAngle)
	}
	return nil
}

// AngleBytes returns the two argument bytes of a goto angle command.
//
// The high byte holds the direction in its top nibble and the top four bits
// of the whole degrees in its low nibble. The low byte holds the low four
// bits of the whole degrees followed by the fraction in 1/16 degree steps.
// A fraction rounding up to 16 carries into the whole degrees. Angles
// rejected by CheckAngle wrap modulo 256 degrees.
func AngleBytes(angle float64) (hi, lo byte) {
	direction := byte(Clockwise)
	if angle < 0 {
		direction = CounterClockwise
	}
	n := sixteenths(math.Abs(angle))
	hi = direction | byte(n>>8)&0x0F
	lo = byte(n)
	return hi, lo
}

// GotoAngle drives the positioner to angle degrees from zero. Positive
// angles are clockwise, negative counter-clockwise. Callers taking angles
// from users validate them with CheckAngle first.
func GotoAngle(angle float64) diseqc.Command {
	hi, lo := AngleBytes(angle)
	return command(0, 0, 0, diseqc.FramingCommand, diseqc.AddressPolar, OpGotoAngle, hi, lo)
}

// DecodeAngle is the inverse of AngleBytes.
func DecodeAngle(hi, lo byte) float64 {
	sixteenths := uint16(hi&0x0F)<<8 | uint16(lo)
	angle := float64(sixteenths) / 16
	if hi&0xF0 == CounterClockwise {
		angle = -angle
	}
	return angle
}

// Halt stops any movement.
func Halt() diseqc.Command { return positionerCommand(OpHalt) }

// LimitsOff disables the soft limits.
func LimitsOff() diseqc.Command { return positionerCommand(OpLimitsOff) }

// LimitEast stores the current position as the east soft limit.
func LimitEast() diseqc.Command { return positionerCommand(OpLimitEast) }

// LimitWest stores the current position as the west soft limit.
func LimitWest() diseqc.Command { return positionerCommand(OpLimitWest) }

// Drive arguments.
const Continuous byte = 0x00

// Seconds returns the drive argument for moving for n seconds (1-127).
func Seconds(n int) (byte, error) {
	if n < 1 || n > 0x7F {
		return 0, fmt.Errorf("drive time %ds out of range 1-127", n)
	}
	return byte(n), nil
}

// Steps returns the drive argument for moving n steps (1-128).
func Steps(n int) (byte, error) {
	if n < 1 || n > 0x80 {
		return 0, fmt.Errorf("drive steps %d out of range 1-128", n)
	}
	return byte(256 - n), nil
}

// DriveEast moves east; arg is Continuous, Seconds(n) or Steps(n).
func DriveEast(arg byte) diseqc.Command { return positionerCommand(OpDriveEast, arg) }

// DriveWest moves west; arg is Continuous, Seconds(n) or Steps(n).
func DriveWest(arg byte) diseqc.Command { return positionerCommand(OpDriveWest, arg) }

// StorePosition saves the current position in slot n.
func StorePosition(n uint8) diseqc.Command { return positionerCommand(OpStorePosition, n) }

// GotoPosition recalls slot n. Slot 0 is the reference position.
func GotoPosition(n uint8) diseqc.Command { return positionerCommand(OpGotoPosition, n) }
