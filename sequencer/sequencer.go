// Package sequencer runs one DiSEqC transmission against a frontend: power
// the bus, send a command, hold the voltage while the accessory acts,
// optionally read its reply, and always turn the voltage off again.
package sequencer

import (
	"errors"
	"fmt"
	"time"

	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
)

const (
	// SettleDelay follows every tone, voltage, send and receive request.
	SettleDelay = 15 * time.Millisecond
	// PowerUpDelay lets powered accessories start once 18V is applied.
	PowerUpDelay = 1 * time.Second
)

// State is a step of a session.
type State int

const (
	Idle State = iota
	ToneSet
	VoltageSet
	PoweredUp
	CommandSent
	Holding
	ReplyReceived
	VoltageOff
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ToneSet:
		return "tone set"
	case VoltageSet:
		return "voltage set"
	case PoweredUp:
		return "powered up"
	case CommandSent:
		return "command sent"
	case Holding:
		return "holding"
	case ReplyReceived:
		return "reply received"
	case VoltageOff:
		return "voltage off"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options controls a session.
type Options struct {
	// Hold is how long the voltage stays on after the command is sent.
	Hold time.Duration
	// Receive requests a slave reply after holding.
	Receive bool
	// ReceiveTimeout is passed to the driver, with millisecond resolution.
	ReceiveTimeout time.Duration
}

// Result is the outcome of a successful session.
type Result struct {
	Frame diseqc.MasterCommand
	// Reply is set if Options.Receive was set.
	Reply *diseqc.Reply
}

// Event reports a step of the session. Err is set when the step failed;
// State is then the step that was attempted.
type Event struct {
	Time    time.Time
	State   State
	Tone    frontend.Tone
	Voltage frontend.Voltage
	Frame   diseqc.MasterCommand
	Reply   *diseqc.Reply
	Wait    time.Duration
	Err     error
}

// EventCallback receives every event of a session, synchronously.
type EventCallback func(event Event)

// Sequencer owns a frontend handle for the duration of its sessions.
type Sequencer struct {
	fe      frontend.Handle
	onEvent EventCallback

	// Sleep waits between steps; replaced in tests.
	Sleep func(time.Duration)
	// Now timestamps events; replaced in tests.
	Now func() time.Time

	state State
}

// New creates a Sequencer for fe. onEvent may be nil.
func New(fe frontend.Handle, onEvent EventCallback) *Sequencer {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Sequencer{
		fe:      fe,
		onEvent: onEvent,
		Sleep:   time.Sleep,
		Now:     time.Now,
	}
}

// State returns the last state reached.
func (s *Sequencer) State() State {
	return s.state
}

func (s *Sequencer) emit(e Event) {
	e.Time = s.Now()
	if e.Err == nil {
		s.state = e.State
	}
	s.onEvent(e)
}

func (s *Sequencer) fail(state State, err error) error {
	s.emit(Event{State: state, Err: err})
	return err
}

// Run performs a complete session for cmd. The voltage is turned off
// before Run returns, whatever happened; if that fails too, the returned
// error carries both failures.
func (s *Sequencer) Run(cmd diseqc.Command, opts Options) (res Result, err error) {
	s.state = Idle
	defer func() {
		if offErr := s.shutdown(); offErr != nil {
			err = errors.Join(err, offErr)
		}
	}()

	if err := s.prepare(); err != nil {
		return Result{}, err
	}

	res.Frame = diseqc.Encode(cmd)
	if err := s.send(res.Frame); err != nil {
		return Result{}, err
	}

	s.emit(Event{State: Holding, Frame: res.Frame, Wait: opts.Hold})
	s.Sleep(opts.Hold)

	if !opts.Receive {
		return res, nil
	}
	reply, err := s.receive(opts.ReceiveTimeout)
	if err != nil {
		return Result{}, err
	}
	res.Reply = &reply
	return res, nil
}

func (s *Sequencer) prepare() error {
	if err := s.fe.SetTone(frontend.ToneOff); err != nil {
		return s.fail(ToneSet, err)
	}
	s.Sleep(SettleDelay)
	s.emit(Event{State: ToneSet, Tone: frontend.ToneOff})

	if err := s.fe.SetVoltage(frontend.Voltage18); err != nil {
		return s.fail(VoltageSet, err)
	}
	s.Sleep(SettleDelay)
	s.emit(Event{State: VoltageSet, Voltage: frontend.Voltage18})

	s.Sleep(PowerUpDelay)
	s.emit(Event{State: PoweredUp, Voltage: frontend.Voltage18, Wait: PowerUpDelay})
	return nil
}

func (s *Sequencer) send(frame diseqc.MasterCommand) error {
	if err := s.fe.SendMasterCommand(frame); err != nil {
		return s.fail(CommandSent, err)
	}
	s.Sleep(SettleDelay)
	s.emit(Event{State: CommandSent, Frame: frame})
	return nil
}

func (s *Sequencer) receive(timeout time.Duration) (diseqc.Reply, error) {
	raw, err := s.fe.RecvSlaveReply(timeout)
	if err != nil {
		return diseqc.Reply{}, s.fail(ReplyReceived, err)
	}
	s.Sleep(SettleDelay)
	reply := diseqc.Decode(raw)
	s.emit(Event{State: ReplyReceived, Reply: &reply})
	return reply, nil
}

func (s *Sequencer) shutdown() error {
	if err := s.fe.SetVoltage(frontend.VoltageOff); err != nil {
		return s.fail(VoltageOff, fmt.Errorf("shutting down: %w", err))
	}
	s.Sleep(SettleDelay)
	s.emit(Event{State: VoltageOff, Voltage: frontend.VoltageOff})
	return nil
}
