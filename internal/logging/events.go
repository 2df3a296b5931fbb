package logging

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
	"github.com/w1xm/diseqc_interface/positioner"
	"github.com/w1xm/diseqc_interface/sequencer"
)

// SessionEvents renders sequencer events as log lines
func SessionEvents(l *Logger, device string) sequencer.EventCallback {
	log := l.WithField("device", device)
	return func(e sequencer.Event) {
		if e.Err != nil {
			log.WithError(e.Err).Errorf("%s failed", e.State)
			if errors.Is(e.Err, frontend.ErrNotSupported) {
				log.Errorf("DVB frontend %s seems to not support bidirectional DiSEqC (versions 2 and above)", device)
			}
			return
		}
		switch e.State {
		case sequencer.ToneSet:
			log.Debugf("Tone set to %s", e.Tone)
		case sequencer.VoltageSet:
			log.Debugf("LNBf voltage set to %s", e.Voltage)
		case sequencer.PoweredUp:
			log.Debugf("Waited %v for the connected devices to power up", e.Wait)
		case sequencer.CommandSent:
			log.Infof("DiSEqC command %s sent", e.Frame)
			log.WithFields(frameFields(e.Frame)).Debug("Parsed DiSEqC command")
		case sequencer.Holding:
			log.Infof("Waiting %v with LNBf voltage enabled for the command to complete", e.Wait)
		case sequencer.ReplyReceived:
			if e.Reply == nil || e.Reply.Empty() {
				log.Info("Received empty DiSEqC reply")
				return
			}
			log.WithFields(logrus.Fields{
				"length":  len(e.Reply.Data),
				"framing": fmt.Sprintf("%.2x", e.Reply.Framing()),
				"data":    fmt.Sprintf("% x", e.Reply.Data),
			}).Info("Received DiSEqC reply")
		case sequencer.VoltageOff:
			log.Debugf("LNBf voltage set to %s", e.Voltage)
		}
	}
}

func frameFields(mc diseqc.MasterCommand) logrus.Fields {
	fields := logrus.Fields{
		"framing":  fmt.Sprintf("%.2x", mc.Framing()),
		"address":  fmt.Sprintf("%.2x", mc.Address()),
		"command":  fmt.Sprintf("%.2x", mc.Opcode()),
		"argument": fmt.Sprintf("% x", mc.Msg[3:]),
	}
	if args := mc.Args(); mc.Opcode() == positioner.OpGotoAngle && len(args) == 2 {
		fields["angle"] = positioner.DecodeAngle(args[0], args[1])
	}
	return fields
}
