package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all bunkerdash configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds storage and logging preferences.
type GeneralConfig struct {
	DBPath           string `toml:"db_path,omitempty"`
	LogFile          string `toml:"log_file,omitempty"`
	LogLevel         string `toml:"log_level"`
	DefaultTimeRange string `toml:"default_time_range,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for the local web view.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	PollIntervalSec int    `toml:"poll_interval_sec"`
	EventsBuffer    int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8788",
			PollIntervalSec: 5,
			EventsBuffer:    200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bunkerdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bunkerdash")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "bunkerdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "bunkerdash")
}

// CacheDir returns the XDG-compliant cache directory holding the log file.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bunkerdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "bunkerdash")
}

// DBPath returns the database path from env var, config, or the default, in
// that order.
func DBPath(cfg Config) string {
	if p := os.Getenv("BUNKERDASH_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "dashboard.db")
}

// LogPath returns the log file path from config or the default.
func LogPath(cfg Config) string {
	if cfg.General.LogFile != "" {
		return cfg.General.LogFile
	}
	return filepath.Join(CacheDir(), "bunkerdash.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
