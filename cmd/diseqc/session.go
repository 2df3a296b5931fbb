package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
	"github.com/w1xm/diseqc_interface/frontend/remote"
	"github.com/w1xm/diseqc_interface/internal/logging"
	"github.com/w1xm/diseqc_interface/sequencer"
)

// openDevice returns the frontend selected by --simulate, --remote or
// --adapter/--frontend, and a name for it.
func openDevice() (frontend.Device, string, error) {
	switch {
	case viper.GetBool("simulate"):
		sim := frontend.NewSimulator()
		sim.Bidirectional = true
		return sim, "simulator", nil
	case viper.GetString("remote") != "":
		url := viper.GetString("remote")
		return remote.NewClient(url, viper.GetString("password")), url, nil
	}
	adapter, fe := viper.GetInt("adapter"), viper.GetInt("frontend")
	dev, err := frontend.Open(adapter, fe)
	if err != nil {
		return nil, "", err
	}
	return dev, frontend.Path(adapter, fe), nil
}

// addHoldFlag adds --timeout with a per-command default.
func addHoldFlag(cmd *cobra.Command, seconds int) {
	cmd.Flags().Int("timeout", seconds, "seconds to keep feeding voltage to the LNBf after sending the command")
}

func holdOption() sequencer.Options {
	return sequencer.Options{Hold: time.Duration(viper.GetInt("timeout")) * time.Second}
}

// runSession opens the frontend, runs one session and closes it again.
func runSession(command diseqc.Command, opts sequencer.Options) (sequencer.Result, error) {
	dev, name, err := openDevice()
	if err != nil {
		return sequencer.Result{}, err
	}
	logger.Infof("DVB frontend %s opened", name)
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Errorf("closing %s: %v", name, err)
			return
		}
		logger.Infof("DVB frontend %s closed", name)
	}()

	logger.Infof("Sending DiSEqC command %s", diseqc.Encode(command))
	seq := sequencer.New(frontend.New(dev), logging.SessionEvents(logger, name))
	return seq.Run(command, opts)
}
