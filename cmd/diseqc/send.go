package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/w1xm/diseqc_interface/diseqc"
)

var sendCmd = &cobra.Command{
	Use:   "send [command]",
	Short: "Send a custom DiSEqC command",
	Long: `Send a custom DiSEqC command given as hexadecimal bytes, optionally
waiting for the reply of the accessory.`,
	Example: `  diseqc send 0xe03160                  # halt the positioner
  diseqc send --receive 0xe2316e        # request, then read the reply`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	addHoldFlag(sendCmd, 5)
	sendCmd.Flags().Bool("receive", false, "also receive the DiSEqC reply")
	sendCmd.Flags().Int("receive-timeout", 500, "milliseconds to wait for the DiSEqC reply")
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := diseqc.ParseCommand(args[0])
	if err != nil {
		return err
	}
	opts := holdOption()
	opts.Receive = viper.GetBool("receive")
	opts.ReceiveTimeout = time.Duration(viper.GetInt("receive-timeout")) * time.Millisecond

	_, err = runSession(command, opts)
	return err
}
