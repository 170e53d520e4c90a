package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8280, cfg.Server.Port)
	assert.False(t, cfg.Server.Auth)
	assert.Equal(t, "./logs", cfg.Log.Directory)
	assert.Equal(t, "app", cfg.Log.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.True(t, cfg.Log.File)
	assert.Equal(t, 50, cfg.Query.DefaultPageSize)
	assert.Equal(t, 1000, cfg.Query.MaxResults)
	assert.Zero(t, cfg.Retention.Days)
	assert.Equal(t, filepath.Join("./logs", "daylog-auth.json"), cfg.Auth.Store)
}

func TestLoad_ConfigFile(t *testing.T) {
	viper.Reset()
	SetDefaults()

	path := filepath.Join(t.TempDir(), "daylog.yaml")
	raw := `server:
  port: 9000
  auth: true
log:
  directory: /var/log/daylog
  prefix: svc
  level: debug
query:
  max_results: 250
retention:
  days: 30
  compress_after_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.Auth)
	assert.Equal(t, "/var/log/daylog", cfg.Log.Directory)
	assert.Equal(t, "svc", cfg.Log.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250, cfg.Query.MaxResults)
	assert.Equal(t, 50, cfg.Query.DefaultPageSize, "unset keys keep defaults")
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.Equal(t, 7, cfg.Retention.CompressAfterDays)
	assert.Equal(t, filepath.Join("/var/log/daylog", "daylog-auth.json"), cfg.Auth.Store)
}

func TestLoad_ExplicitAuthStore(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("auth.store", "/etc/daylog/auth.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/daylog/auth.json", cfg.Auth.Store)
}
