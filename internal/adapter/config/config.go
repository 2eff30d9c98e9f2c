// Package config loads application configuration from file and
// environment using viper. Settings here are operator-facing knobs;
// per-user playback preferences live in the settings store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Network  NetworkConfig  `mapstructure:"network"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig holds durable store configuration
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"` // bolt db location
	// CacheCeilingBytes caps individual cached audio blobs. Zero
	// disables the ceiling.
	CacheCeilingBytes int64 `mapstructure:"cache_ceiling_bytes"`
}

// NetworkConfig holds fetcher configuration
type NetworkConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// ProbeAddr is dialed to decide online/offline, host:port
	ProbeAddr    string        `mapstructure:"probe_addr"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// PlaybackConfig holds transport configuration
type PlaybackConfig struct {
	// ProgressInterval is the cadence of position updates from the
	// simulated media element
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:           defaultDataPath(),
			CacheCeilingBytes: 50 * 1024 * 1024,
		},
		Network: NetworkConfig{
			FetchTimeout: 30 * time.Second,
			ProbeAddr:    "1.1.1.1:443",
			ProbeTimeout: 2 * time.Second,
		},
		Playback: PlaybackConfig{
			ProgressInterval: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "resona")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "resona")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "resona")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "resona")
	}
}

// Load reads configuration from file and environment. A missing config
// file is not an error; defaults apply.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. RESONA_LOGGING_LEVEL
	v.SetEnvPrefix("RESONA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}
