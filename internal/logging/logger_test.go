package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
	"github.com/w1xm/diseqc_interface/positioner"
	"github.com/w1xm/diseqc_interface/sequencer"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", logrus.InfoLevel, &buf)
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("shown %d", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level:\n%s", out)
	}
	for _, want := range []string{
		`level=info msg="shown 2" cmd=test`,
		`level=error msg="shown 3" cmd=test`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	New("test", logrus.DebugLevel, &buf).Debugf("now shown")
	if !strings.Contains(buf.String(), `level=debug msg="now shown"`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diseqc.log")
	l, err := NewWithFile("test", logrus.InfoLevel, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Infof("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `msg="to file"`) {
		t.Errorf("log file contents %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("colour codes in log file %q", data)
	}

	if _, err := NewWithFile("test", logrus.InfoLevel, "/nonexistent/dir/test.log"); err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestSessionEvents(t *testing.T) {
	var buf bytes.Buffer
	l := New("diseqc", logrus.DebugLevel, &buf)
	onEvent := SessionEvents(l, "/dev/dvb/adapter0/frontend0")

	frame := diseqc.Encode(0xe03160)
	empty := diseqc.Reply{}
	reply := diseqc.Reply{Data: []byte{0xe4, 0x01}}
	for _, e := range []sequencer.Event{
		{State: sequencer.ToneSet, Tone: frontend.ToneOff},
		{State: sequencer.VoltageSet, Voltage: frontend.Voltage18},
		{State: sequencer.PoweredUp, Wait: time.Second},
		{State: sequencer.CommandSent, Frame: frame},
		{State: sequencer.Holding, Wait: 5 * time.Second},
		{State: sequencer.ReplyReceived, Reply: &empty},
		{State: sequencer.ReplyReceived, Reply: &reply},
		{State: sequencer.ReplyReceived, Err: &frontend.IoError{Op: "receiving reply", Request: frontend.FE_DISEQC_RECV_SLAVE_REPLY, Err: syscall.EOPNOTSUPP}},
		{State: sequencer.VoltageOff, Voltage: frontend.VoltageOff},
	} {
		onEvent(e)
	}

	out := buf.String()
	for _, want := range []string{
		`msg="Tone set to OFF"`,
		`msg="LNBf voltage set to 18V"`,
		`msg="Waited 1s for the connected devices to power up"`,
		`msg="DiSEqC command e0 31 60 00 00 00 sent"`,
		`msg="Parsed DiSEqC command" address=31 argument="00 00 00" cmd=diseqc command=60 device=/dev/dvb/adapter0/frontend0 framing=e0`,
		`msg="Waiting 5s with LNBf voltage enabled`,
		`msg="Received empty DiSEqC reply"`,
		`msg="Received DiSEqC reply" cmd=diseqc data="e4 01" device=/dev/dvb/adapter0/frontend0 framing=e4 length=2`,
		`msg="reply received failed"`,
		"seems to not support bidirectional DiSEqC",
		`msg="LNBf voltage set to OFF"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionEventsGotoAngle(t *testing.T) {
	var buf bytes.Buffer
	onEvent := SessionEvents(New("diseqc", logrus.DebugLevel, &buf), "simulator")
	onEvent(sequencer.Event{State: sequencer.CommandSent, Frame: diseqc.Encode(positioner.GotoAngle(-5))})
	if out := buf.String(); !strings.Contains(out, "angle=-5 ") {
		t.Errorf("commanded angle missing:\n%s", out)
	}
}
