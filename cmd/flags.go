// Package cmd provides the cephcrush CLI commands.
// This file contains reusable helpers for configuration loading with CLI flag precedence.
package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// FlagLoader provides methods for loading configuration values with CLI flag precedence.
// When a CLI flag is explicitly set, it takes precedence over config file and env vars.
// Otherwise, viper's standard priority applies: env > config file > flag default.
type FlagLoader struct {
	cmd *cobra.Command
}

// NewFlagLoader creates a FlagLoader for the given cobra command.
func NewFlagLoader(cmd *cobra.Command) *FlagLoader {
	return &FlagLoader{cmd: cmd}
}

// String returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) String(flagName string) string {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetString(flagName)
		return val
	}
	return viper.GetString(flagName)
}

// Bool returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) Bool(flagName string) bool {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetBool(flagName)
		return val
	}
	return viper.GetBool(flagName)
}

// Float64 returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) Float64(flagName string) float64 {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetFloat64(flagName)
		return val
	}
	return viper.GetFloat64(flagName)
}

// Duration returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) Duration(flagName string) time.Duration {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetDuration(flagName)
		return val
	}
	return viper.GetDuration(flagName)
}

// StringSlice returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) StringSlice(flagName string) []string {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetStringSlice(flagName)
		return val
	}
	return viper.GetStringSlice(flagName)
}

// StringToString returns CLI flag value if explicitly set, otherwise viper value.
func (f *FlagLoader) StringToString(flagName string) map[string]string {
	if f.cmd.Flags().Changed(flagName) || !viper.IsSet(flagName) {
		val, _ := f.cmd.Flags().GetStringToString(flagName)
		return val
	}
	if raw, ok := viper.Get(flagName).(string); ok {
		val, err := parseStringToString(raw)
		if err != nil {
			logger.Warn().Err(err).Str("key", flagName).Msg("Ignoring malformed map value")
			return nil
		}
		return val
	}
	return viper.GetStringMapString(flagName)
}

// parseStringToString reads a map given as a string, as environment variables
// are: either a JSON object or the "k1=v1,k2=v2" form the flag accepts.
func parseStringToString(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "{") {
		var val map[string]string
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			return nil, fmt.Errorf("parse %q: %w", raw, err)
		}
		return val, nil
	}

	fields, err := csv.NewReader(strings.NewReader(raw)).Read()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	val := make(map[string]string, len(fields))
	for _, pair := range fields {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parse %q: %q must be formatted as key=value", raw, pair)
		}
		val[k] = v
	}
	return val, nil
}
