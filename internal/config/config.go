// Package config loads daylog settings from a YAML file via viper,
// with environment overrides (DAYLOG_SERVER_PORT and friends).
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete daylog configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Query     QueryConfig     `mapstructure:"query"`
	Retention RetentionConfig `mapstructure:"retention"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// ServerConfig controls the HTTP query surface.
type ServerConfig struct {
	// Port the server listens on.
	Port int `mapstructure:"port"`
	// Auth toggles the authentication middleware. When false every
	// request passes; when true a session or API token is required.
	Auth bool `mapstructure:"auth"`
}

// LogConfig controls the writer path and the location of the store.
type LogConfig struct {
	// Directory holding the per-day log files.
	Directory string `mapstructure:"directory"`
	// Prefix of day-file names: <prefix>-<YYYY-MM-DD>.log.
	Prefix string `mapstructure:"prefix"`
	// Level is the least severe level still written (error|warn|info|debug).
	Level string `mapstructure:"level"`
	// Console enables the human-readable stdout transport.
	Console bool `mapstructure:"console"`
	// File enables the NDJSON day-file transport.
	File bool `mapstructure:"file"`
}

// QueryConfig bounds query results.
type QueryConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	// MaxResults caps the matched-record count per query; matches past
	// the cap are dropped before sorting.
	MaxResults int `mapstructure:"max_results"`
}

// RetentionConfig controls the background archiver. Zero disables.
type RetentionConfig struct {
	Days              int `mapstructure:"days"`
	CompressAfterDays int `mapstructure:"compress_after_days"`
}

// AuthConfig locates the credential store.
type AuthConfig struct {
	// Store is the path of the users/tokens file. Empty means
	// <log directory>/daylog-auth.json.
	Store string `mapstructure:"store"`
}

// SetDefaults registers every default so the config file may omit any
// key, or be absent entirely.
func SetDefaults() {
	viper.SetDefault("server.port", 8280)
	viper.SetDefault("server.auth", false)
	viper.SetDefault("log.directory", "./logs")
	viper.SetDefault("log.prefix", "app")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.console", true)
	viper.SetDefault("log.file", true)
	viper.SetDefault("query.default_page_size", 50)
	viper.SetDefault("query.max_results", 1000)
	viper.SetDefault("retention.days", 0)
	viper.SetDefault("retention.compress_after_days", 0)
	viper.SetDefault("auth.store", "")
}

// Load unmarshals the current viper state into a Config and fills in
// derived paths.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.Store == "" {
		cfg.Auth.Store = filepath.Join(cfg.Log.Directory, "daylog-auth.json")
	}
	return &cfg, nil
}
