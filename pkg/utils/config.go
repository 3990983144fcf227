// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CEPHCRUSH_CLUSTER.
const EnvPrefix = "CEPHCRUSH"

var (
	ConfigurationFileDirectory string
)

// LoadConfiguration merges the named config file into viper from the usual
// search path and enables environment overrides. It reports whether a file
// was found.
func LoadConfiguration(v *viper.Viper, configFileName string, required bool) bool {
	v.SetConfigName(configFileName)
	if ConfigurationFileDirectory != "" {
		v.AddConfigPath(ResolvePath(ConfigurationFileDirectory))
	}
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.cephcrush")
	v.AddConfigPath("/usr/local/etc/cephcrush/")
	v.AddConfigPath("/etc/cephcrush/")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if required {
				log.Fatal().Msgf("Config file not found: %s", configFileName)
			}
			log.Debug().Msgf("Config file not found: %s", configFileName)
			return false
		}

		if required {
			log.Fatal().Err(err).Msgf("Failed to load required config file: %s", configFileName)
		}
		log.Warn().Err(err).Msgf("Failed to load config file: %s", configFileName)
		return false
	}
	log.Info().Msgf("Loaded config file: %s", v.ConfigFileUsed())

	return true
}
