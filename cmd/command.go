// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"
	"github.com/LeeDigitalWorks/cephcrush/pkg/utils"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFileName is the base name of the optional config file.
const configFileName = "cephcrush"

// errRunFailed is returned by commands whose failure was already reported
// through a result record.
var errRunFailed = errors.New("run failed")

var rootCmd = &cobra.Command{
	Use:   "cephcrush",
	Short: "cephcrush - Build Ceph CRUSH hierarchies",
	Long: `cephcrush creates the CRUSH buckets declared in a node's location
(host, rack, datacenter, ...) and nests each bucket under the next more
general one, using "ceph osd crush add-bucket" and "ceph osd crush move".`,
	PersistentPreRunE: initialize,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&utils.ConfigurationFileDirectory, "config_dir", "", "Directory for configuration files")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, console)")
}

// initialize loads the config file and applies logging settings.
func initialize(cmd *cobra.Command, args []string) error {
	utils.LoadConfiguration(viper.GetViper(), configFileName, false)

	f := NewFlagLoader(cmd)
	if lvl := f.String("log-level"); lvl != "" {
		level, err := zerolog.ParseLevel(lvl)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	if f.String("log-format") == "console" {
		logger.SetConsole(os.Stderr)
	}
	return nil
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errRunFailed) {
			logger.Error().Err(err).Msg("command failed")
		}
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}
