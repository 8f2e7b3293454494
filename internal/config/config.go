// Package config handles configuration loading, validation, and management for nvim-voice.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/victorgalvez56/nvim-voice/internal/device"
	"github.com/victorgalvez56/nvim-voice/internal/keymapp"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete application configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Keymapp configuration for reading the layout database.
	Keymapp KeymappConfig `toml:"keymapp" json:"keymapp" yaml:"keymapp"`

	// Device configuration for keyboard presence detection.
	Device DeviceConfig `toml:"device" json:"device" yaml:"device"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// mu protects concurrent access to the config.
	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// KeymappConfig locates the Keymapp database.
type KeymappConfig struct {
	// DatabasePath is the Keymapp sqlite file. Empty means the platform
	// default location.
	DatabasePath string `toml:"database_path" json:"database_path" yaml:"database_path"`

	// Watch reloads the layout when the database changes.
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`

	// DebounceMs is how long the database must stay quiet before a reload.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// DeviceConfig controls USB keyboard detection.
type DeviceConfig struct {
	// Enabled turns on USB polling.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// VendorID is the USB vendor to look for.
	VendorID uint16 `toml:"vendor_id" json:"vendor_id" yaml:"vendor_id"`

	// PollIntervalMs is the time between USB enumerations.
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file used when Output includes a file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the age after which rotated files are deleted.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Keymapp: KeymappConfig{
			DatabasePath: "",
			Watch:        true,
			DebounceMs:   500,
		},
		Device: DeviceConfig{
			Enabled:        true,
			VendorID:       device.VendorZSA,
			PollIntervalMs: int(device.DefaultPollInterval / time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "nvim-voice.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// DataDir returns the base nvim-voice directory.
// Uses platform-specific paths or the NVIMVOICE_DATA_DIR environment override.
func DataDir() string {
	if envDir := os.Getenv("NVIMVOICE_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformConfigDir()
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with NVIMVOICE_.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("NVIMVOICE_KEYMAPP_DB"); v != "" {
		c.Keymapp.DatabasePath = v
	}

	if v := os.Getenv("NVIMVOICE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NVIMVOICE_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Version: c.Version,
		Keymapp: c.Keymapp,
		Device:  c.Device,
		Logging: c.Logging,
	}
}

// KeymappDatabasePath returns the configured database path, expanded, or
// the platform default.
func (c *Config) KeymappDatabasePath() string {
	if c.Keymapp.DatabasePath == "" {
		return keymapp.DefaultDatabasePath()
	}
	return expandPath(c.Keymapp.DatabasePath)
}

// KeymappDebounce returns the database watch debounce interval.
func (c *Config) KeymappDebounce() time.Duration {
	return time.Duration(c.Keymapp.DebounceMs) * time.Millisecond
}

// DevicePollInterval returns the USB poll interval.
func (c *Config) DevicePollInterval() time.Duration {
	return time.Duration(c.Device.PollIntervalMs) * time.Millisecond
}

// String summarizes the configuration for diagnostics.
func (c *Config) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("config v%d (keymapp=%q watch=%t device=%t log=%s/%s)",
		c.Version, c.Keymapp.DatabasePath, c.Keymapp.Watch, c.Device.Enabled, c.Logging.Level, c.Logging.Output)
}
