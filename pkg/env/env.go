// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"sync"

	"github.com/spf13/viper"
)

// Local is the default environment, used when CEPHCRUSH_ENV is unset.
const Local = "local"

var (
	Env string

	once sync.Once
)

func IsLocal() bool {
	return Env == Local
}

func init() {
	once.Do(func() {
		v := viper.New()
		_ = v.BindEnv("env", "CEPHCRUSH_ENV")
		Env = v.GetString("env")
		if Env == "" {
			Env = Local
		}
	})
}
