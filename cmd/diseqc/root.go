package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/w1xm/diseqc_interface/internal/config"
	"github.com/w1xm/diseqc_interface/internal/logging"
)

const (
	Version = "0.3.0"
)

var (
	logger  *logging.Logger
	siteCfg *config.Config

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "diseqc",
		Short: "send DiSEqC commands through a DVB frontend",
		Long: fmt.Sprintf(`diseqc (v%s)

Drives LNBs, switches and positioners attached to a DVB frontend. Every
invocation powers the bus, sends one command, keeps the voltage on while
the accessory acts and turns the voltage off again.`, Version),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of diseqc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("diseqc v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.AddCommand(sendCmd)
	RootCmd.AddCommand(gotoCmd)
	RootCmd.AddCommand(stopCmd)
	RootCmd.AddCommand(driveCmd)
	RootCmd.AddCommand(limitCmd)
	RootCmd.AddCommand(storeCmd)
	RootCmd.AddCommand(recallCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)

	flags := RootCmd.PersistentFlags()
	flags.Int("adapter", 0, "DVB adapter to use")
	flags.Int("frontend", 0, "DVB frontend to use")
	flags.Bool("verbose", false, "increase logging verbosity")
	flags.String("log-file", "", "also append log lines to this file")
	flags.String("config", "", "site file with coordinates and named positions (YAML)")
	flags.String("remote", "", "URL of a 'diseqc serve' instance owning the frontend")
	flags.String("password", "", "password for the remote frontend")
	flags.Bool("simulate", false, "use an in-memory frontend instead of a device")
}

// initConfig initializes configuration from environment variables
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("diseqc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level := logrus.InfoLevel
	if viper.GetBool("verbose") {
		level = logrus.DebugLevel
	}
	l, err := logging.NewWithFile(cmd.Name(), level, viper.GetString("log-file"))
	if err != nil {
		return err
	}
	logger = l

	siteCfg = &config.Config{}
	if path := viper.GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		siteCfg = cfg
		if cfg.Frontend != nil {
			viper.SetDefault("adapter", cfg.Frontend.Adapter)
			viper.SetDefault("frontend", cfg.Frontend.Frontend)
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Errorf("%v", err)
			logger.Close()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
