package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/internal/config"
	"github.com/w1xm/diseqc_interface/positioner"
)

var (
	gotoCmd = &cobra.Command{
		Use:   "goto [angle]",
		Short: "Drive the positioner to an angle",
		Long: `Drive a DiSEqC 1.2 positioner to an angle in degrees, to a named preset
from the site file, or to the angle of a satellite computed from the site
coordinates. Negative angles are counter-clockwise and must follow '--'.`,
		Example: `  diseqc goto 12.3
  diseqc goto -- -5
  diseqc goto --preset astra
  diseqc goto --config site.yaml --satellite 19.2`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGoto,
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Halt the positioner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositioner(positioner.Halt())
		},
	}

	driveCmd = &cobra.Command{
		Use:       "drive east|west",
		Short:     "Move the positioner by steps, for a time, or until stopped",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"east", "west"},
		RunE:      runDrive,
	}

	limitCmd = &cobra.Command{
		Use:       "limit east|west|off",
		Short:     "Store the current position as a soft limit, or disable the limits",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"east", "west", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := limitCommand(args[0])
			if err != nil {
				return err
			}
			return runPositioner(command)
		},
	}

	storeCmd = &cobra.Command{
		Use:   "store [slot]",
		Short: "Store the current position in a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return runPositioner(positioner.StorePosition(slot))
		},
	}

	recallCmd = &cobra.Command{
		Use:   "recall [slot]",
		Short: "Drive the positioner to a stored slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return runPositioner(positioner.GotoPosition(slot))
		},
	}
)

func init() {
	addHoldFlag(gotoCmd, 15)
	gotoCmd.Flags().String("preset", "", "named position from the site file")
	gotoCmd.Flags().Float64("satellite", 0, "satellite longitude in degrees, east positive")
	gotoCmd.MarkFlagsMutuallyExclusive("preset", "satellite")

	addHoldFlag(stopCmd, 1)

	addHoldFlag(driveCmd, 5)
	driveCmd.Flags().Int("steps", 0, "move this many steps (1-128)")
	driveCmd.Flags().Int("seconds", 0, "move for this many seconds (1-127)")
	driveCmd.MarkFlagsMutuallyExclusive("steps", "seconds")

	addHoldFlag(limitCmd, 1)
	addHoldFlag(storeCmd, 1)
	addHoldFlag(recallCmd, 15)
}

func runPositioner(command diseqc.Command) error {
	_, err := runSession(command, holdOption())
	return err
}

func runGoto(cmd *cobra.Command, args []string) error {
	var satellite *float64
	if cmd.Flags().Changed("satellite") {
		lon := viper.GetFloat64("satellite")
		satellite = &lon
		if siteCfg.Site != nil {
			logger.Infof("Satellite at %.2f° is at positioner angle %.2f°", lon, siteCfg.SatelliteAngle(lon))
		}
	}
	command, err := gotoCommand(siteCfg, args, viper.GetString("preset"), satellite)
	if err != nil {
		return err
	}
	return runPositioner(command)
}

// gotoCommand resolves exactly one of an angle argument, a preset name or a
// satellite longitude into a positioner command.
func gotoCommand(cfg *config.Config, args []string, preset string, satellite *float64) (diseqc.Command, error) {
	given := len(args)
	if preset != "" {
		given++
	}
	if satellite != nil {
		given++
	}
	if given != 1 {
		return 0, fmt.Errorf("need exactly one of an angle, --preset or --satellite")
	}

	switch {
	case preset != "":
		p, ok := cfg.Preset(preset)
		if !ok {
			return 0, fmt.Errorf("unknown preset %q", preset)
		}
		return cfg.Command(p)
	case satellite != nil:
		if cfg.Site == nil {
			return 0, fmt.Errorf("--satellite needs a site file with coordinates")
		}
		return positioner.GotoAngle(cfg.SatelliteAngle(*satellite)), nil
	}
	angle, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q: %w", args[0], err)
	}
	if err := positioner.CheckAngle(angle); err != nil {
		return 0, err
	}
	return positioner.GotoAngle(angle), nil
}

func runDrive(cmd *cobra.Command, args []string) error {
	command, err := driveCommand(args[0], viper.GetInt("steps"), viper.GetInt("seconds"))
	if err != nil {
		return err
	}
	return runPositioner(command)
}

// driveCommand builds a drive command; with neither steps nor seconds the
// positioner moves until stopped.
func driveCommand(direction string, steps, seconds int) (diseqc.Command, error) {
	var (
		arg = positioner.Continuous
		err error
	)
	switch {
	case steps != 0 && seconds != 0:
		return 0, fmt.Errorf("--steps and --seconds are exclusive")
	case steps != 0:
		arg, err = positioner.Steps(steps)
	case seconds != 0:
		arg, err = positioner.Seconds(seconds)
	}
	if err != nil {
		return 0, err
	}
	switch direction {
	case "east":
		return positioner.DriveEast(arg), nil
	case "west":
		return positioner.DriveWest(arg), nil
	}
	return 0, fmt.Errorf("unknown direction %q, want east or west", direction)
}

func limitCommand(which string) (diseqc.Command, error) {
	switch which {
	case "east":
		return positioner.LimitEast(), nil
	case "west":
		return positioner.LimitWest(), nil
	case "off":
		return positioner.LimitsOff(), nil
	}
	return 0, fmt.Errorf("unknown limit %q, want east, west or off", which)
}

func parseSlot(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q: %w", s, err)
	}
	return uint8(n), nil
}
