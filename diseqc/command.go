// Package diseqc encodes DiSEqC master commands and decodes slave replies in
// the layout used by the Linux DVB frontend API.
package diseqc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Framing bytes (first byte of every master command).
const (
	FramingCommand         = 0xE0 // from master, no reply required, first transmission
	FramingCommandRepeat   = 0xE1 // from master, no reply required, repeated transmission
	FramingRequest         = 0xE2 // from master, reply required, first transmission
	FramingRequestRepeat   = 0xE3 // from master, reply required, repeated transmission
	FramingReplyOK         = 0xE4 // from slave, no errors detected
	FramingReplyNotSupport = 0xE5 // from slave, command not supported
)

// Address bytes.
const (
	AddressAny        = 0x00
	AddressAnyLNB     = 0x10
	AddressLNB        = 0x11
	AddressSwitch     = 0x14
	AddressSMATV      = 0x18
	AddressPolariser  = 0x20
	AddressPositioner = 0x30
	AddressPolar      = 0x31
	AddressElevation  = 0x32
	AddressSubscriber = 0x71
)

// MasterCommandLen is the size of the payload of a master command.
const MasterCommandLen = 6

// Command is a DiSEqC command in its numeric form: the last six bytes of its
// big-endian 64-bit representation, e.g. 0xe03160 for "halt positioner".
type Command uint64

// MasterCommand mirrors struct dvb_diseqc_master_cmd.
type MasterCommand struct {
	Msg [MasterCommandLen]byte
	Len uint8
}

// Encode turns a command into a master command. Only the low six bytes of
// the command are used. Leading zero bytes are moved to the end of the
// message and Len counts the remaining bytes, clamped to at least 1: the
// zero command encodes as a single zero byte rather than Len 0.
func Encode(c Command) MasterCommand {
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], uint64(c))
	b := full[2:]

	lead := 0
	for lead < MasterCommandLen-1 && b[lead] == 0 {
		lead++
	}

	var mc MasterCommand
	copy(mc.Msg[:], b[lead:])
	mc.Len = uint8(MasterCommandLen - lead)
	return mc
}

// Bytes returns the significant bytes of the message.
func (mc MasterCommand) Bytes() []byte {
	n := int(mc.Len)
	if n > MasterCommandLen {
		n = MasterCommandLen
	}
	out := make([]byte, n)
	copy(out, mc.Msg[:n])
	return out
}

// Command reassembles the numeric command from the significant bytes.
func (mc MasterCommand) Command() Command {
	var c Command
	for _, b := range mc.Bytes() {
		c = c<<8 | Command(b)
	}
	return c
}

// Framing returns the framing byte, e.g. FramingCommand.
func (mc MasterCommand) Framing() byte { return mc.Msg[0] }

// Address returns the address byte, e.g. AddressPolar.
func (mc MasterCommand) Address() byte { return mc.Msg[1] }

// Opcode returns the command byte.
func (mc MasterCommand) Opcode() byte { return mc.Msg[2] }

// Args returns the argument bytes following the opcode, if any.
func (mc MasterCommand) Args() []byte {
	b := mc.Bytes()
	if len(b) <= 3 {
		return nil
	}
	return b[3:]
}

// String formats the full six byte message the way the frontend receives it.
func (mc MasterCommand) String() string {
	return hexBytes(mc.Msg[:])
}

// MarshalBinary returns the 7 byte ioctl record.
func (mc MasterCommand) MarshalBinary() ([]byte, error) {
	buf := make([]byte, MasterCommandSize)
	copy(buf, mc.Msg[:])
	buf[6] = mc.Len
	return buf, nil
}

// UnmarshalBinary parses a 7 byte ioctl record.
func (mc *MasterCommand) UnmarshalBinary(buf []byte) error {
	if len(buf) < MasterCommandSize {
		return ErrShortRecord
	}
	copy(mc.Msg[:], buf[:MasterCommandLen])
	mc.Len = buf[6]
	if mc.Len > MasterCommandLen {
		return fmt.Errorf("master command length %d out of range", mc.Len)
	}
	return nil
}

// MasterCommandSize is sizeof(struct dvb_diseqc_master_cmd).
const MasterCommandSize = 7

var ErrShortRecord = errors.New("short record")

// ParseCommand parses a hexadecimal command such as "0xe03160".
func ParseCommand(s string) (Command, error) {
	h := strings.ToLower(strings.TrimSpace(s))
	h = strings.TrimPrefix(h, "0x")
	h = strings.ReplaceAll(h, "_", "")
	if h == "" {
		return 0, fmt.Errorf("parsing command %q: empty", s)
	}
	v, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing command %q: %w", s, err)
	}
	return Command(v), nil
}

func (c Command) String() string {
	return fmt.Sprintf("%#x", uint64(c))
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%.2x", v)
	}
	return strings.Join(parts, " ")
}
