package diseqc

import (
	"encoding/binary"
	"fmt"
)

// SlaveReplyLen is the size of the message of a slave reply.
const SlaveReplyLen = 4

// SlaveReplySize is sizeof(struct dvb_diseqc_slave_reply). msg_len is
// followed by three bytes of padding so that timeout is 4-byte aligned.
const SlaveReplySize = 12

const slaveReplyTimeoutOffset = 8

// SlaveReply mirrors struct dvb_diseqc_slave_reply. Timeout is the time in
// milliseconds the driver waits for a reply.
type SlaveReply struct {
	Msg     [SlaveReplyLen]byte
	Len     uint8
	Timeout int32
}

// MarshalBinary returns the padded 12 byte ioctl record.
func (r SlaveReply) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SlaveReplySize)
	copy(buf, r.Msg[:])
	buf[SlaveReplyLen] = r.Len
	binary.NativeEndian.PutUint32(buf[slaveReplyTimeoutOffset:], uint32(r.Timeout))
	return buf, nil
}

// UnmarshalBinary parses the padded 12 byte ioctl record.
func (r *SlaveReply) UnmarshalBinary(buf []byte) error {
	if len(buf) < SlaveReplySize {
		return ErrShortRecord
	}
	copy(r.Msg[:], buf[:SlaveReplyLen])
	r.Len = buf[SlaveReplyLen]
	r.Timeout = int32(binary.NativeEndian.Uint32(buf[slaveReplyTimeoutOffset:]))
	return nil
}

// Reply is a decoded slave reply.
type Reply struct {
	Data []byte
}

// Empty reports whether no reply bytes were received.
func (r Reply) Empty() bool {
	return len(r.Data) == 0
}

// Framing returns the framing byte of the reply, or 0 for an empty reply.
func (r Reply) Framing() byte {
	if r.Empty() {
		return 0
	}
	return r.Data[0]
}

func (r Reply) String() string {
	if r.Empty() {
		return "empty"
	}
	return fmt.Sprintf("%s (length %d)", hexBytes(r.Data), len(r.Data))
}

// Decode extracts the received bytes from a slave reply. A zero length
// decodes to an empty Reply; lengths past the message size are clamped.
func Decode(sr SlaveReply) Reply {
	n := int(sr.Len)
	if n == 0 {
		return Reply{}
	}
	if n > SlaveReplyLen {
		n = SlaveReplyLen
	}
	data := make([]byte, n)
	copy(data, sr.Msg[:n])
	return Reply{Data: data}
}
