package frontend

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/w1xm/diseqc_interface/diseqc"
)

// Call is one request seen by the Simulator.
type Call struct {
	Request uint32
	Value   int
	Buffer  []byte
}

func (c Call) String() string {
	if c.Buffer != nil {
		return fmt.Sprintf("%s(% x)", RequestName(c.Request), c.Buffer)
	}
	return fmt.Sprintf("%s(%d)", RequestName(c.Request), c.Value)
}

// Simulator is an in-memory Device behaving like a frontend with a
// DiSEqC accessory attached.
type Simulator struct {
	// Bidirectional enables FE_DISEQC_RECV_SLAVE_REPLY. Without it the
	// request fails with EOPNOTSUPP like most DVB-S cards.
	Bidirectional bool
	// Fail makes the given request fail with the error instead of running.
	Fail map[uint32]error

	mu       sync.Mutex
	tone     Tone
	voltage  Voltage
	calls    []Call
	commands []diseqc.MasterCommand
	replies  []diseqc.SlaveReply
	closed   bool
}

func NewSimulator() *Simulator {
	return &Simulator{
		tone:    ToneOff,
		voltage: VoltageOff,
		Fail:    map[uint32]error{},
	}
}

// QueueReply makes the next receive return msg. An empty msg queues an
// empty reply.
func (s *Simulator) QueueReply(msg ...byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var r diseqc.SlaveReply
	r.Len = uint8(copy(r.Msg[:], msg))
	s.replies = append(s.replies, r)
}

func (s *Simulator) Tone() Tone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tone
}

func (s *Simulator) Voltage() Voltage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voltage
}

// Calls returns every request in the order it was issued.
func (s *Simulator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Commands returns the master commands that reached the bus.
func (s *Simulator) Commands() []diseqc.MasterCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]diseqc.MasterCommand(nil), s.commands...)
}

func (s *Simulator) IoctlValue(req uint32, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Request: req, Value: value})
	if err := s.check(req); err != nil {
		return err
	}
	switch req {
	case FE_SET_TONE:
		if value != int(ToneOn) && value != int(ToneOff) {
			return syscall.EINVAL
		}
		s.tone = Tone(value)
	case FE_SET_VOLTAGE:
		if value < int(Voltage13) || value > int(VoltageOff) {
			return syscall.EINVAL
		}
		s.voltage = Voltage(value)
	default:
		return syscall.ENOTTY
	}
	return nil
}

func (s *Simulator) IoctlBuffer(req uint32, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Request: req, Buffer: append([]byte(nil), buf...)})
	if err := s.check(req); err != nil {
		return err
	}
	if err := CheckBuffer(req, buf); err != nil {
		return err
	}
	switch req {
	case FE_DISEQC_SEND_MASTER_CMD:
		var mc diseqc.MasterCommand
		if err := mc.UnmarshalBinary(buf); err != nil {
			return syscall.EINVAL
		}
		if mc.Len < 3 {
			return syscall.EINVAL
		}
		if s.voltage == VoltageOff {
			// Nothing on the bus is powered.
			return syscall.EIO
		}
		s.commands = append(s.commands, mc)
	case FE_DISEQC_RECV_SLAVE_REPLY:
		if !s.Bidirectional {
			return syscall.EOPNOTSUPP
		}
		var pending diseqc.SlaveReply
		if err := pending.UnmarshalBinary(buf); err != nil {
			return syscall.EINVAL
		}
		var reply diseqc.SlaveReply
		if len(s.replies) > 0 {
			reply, s.replies = s.replies[0], s.replies[1:]
		}
		reply.Timeout = pending.Timeout
		out, _ := reply.MarshalBinary()
		copy(buf, out)
	default:
		return syscall.ENOTTY
	}
	return nil
}

func (s *Simulator) check(req uint32) error {
	if s.closed {
		return syscall.EBADF
	}
	return s.Fail[req]
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
