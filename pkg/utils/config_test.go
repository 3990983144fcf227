// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cephcrush-test.yaml"), []byte(`
cluster: backup
abort-on-failure: true
location:
  host: node1
  rack: rackA
`), 0o644))

	ConfigurationFileDirectory = dir
	t.Cleanup(func() { ConfigurationFileDirectory = "" })

	v := viper.New()
	require.True(t, LoadConfiguration(v, "cephcrush-test", false))
	assert.Equal(t, "backup", v.GetString("cluster"))
	assert.True(t, v.GetBool("abort-on-failure"))
	assert.Equal(t, map[string]string{"host": "node1", "rack": "rackA"}, v.GetStringMapString("location"))
}

func TestLoadConfiguration_EnvOverride(t *testing.T) {
	t.Setenv("CEPHCRUSH_RATE_LIMIT", "2.5")

	v := viper.New()
	assert.False(t, LoadConfiguration(v, "cephcrush-missing-config", false))
	assert.Equal(t, 2.5, v.GetFloat64("rate-limit"))
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CEPHCRUSH_TEST_DIR", "/var/lib/cephcrush")

	assert.Equal(t, "/var/lib/cephcrush/metrics.prom", ResolvePath("$CEPHCRUSH_TEST_DIR/metrics.prom"))
	assert.Equal(t, "", ResolvePath(""))
	assert.True(t, filepath.IsAbs(ResolvePath("relative/file")))
}

func TestCheckWritableDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, CheckWritableDir(dir))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.ErrorIs(t, CheckWritableDir(file), os.ErrInvalid)

	assert.Error(t, CheckWritableDir(filepath.Join(dir, "missing")))
}
