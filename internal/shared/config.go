package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	UserHeader  string `toml:"user_header"`
	EmailHeader string `toml:"email_header"`
}

// CatalogConfig controls genre defaults, fetch limits and fingerprinting.
type CatalogConfig struct {
	DefaultGenre string `toml:"default_genre"`
	PageSize     int    `toml:"page_size"`
	DisplaySize  int    `toml:"display_size"`
	ViewLimit    int    `toml:"view_limit"`
	Fingerprint  string `toml:"fingerprint"`
	Validate     bool   `toml:"validate"`
}

// StoreConfig contains per-partition write throttling.
type StoreConfig struct {
	PartitionWriteRate  float64 `toml:"partition_write_rate"`
	PartitionWriteBurst int     `toml:"partition_write_burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks limits and enumerated settings.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	case c.Catalog.PageSize <= 0:
		return fmt.Errorf("%w: catalog.page_size must be positive", ErrInvalidConfig)
	case c.Catalog.DisplaySize <= 0:
		return fmt.Errorf("%w: catalog.display_size must be positive", ErrInvalidConfig)
	case c.Catalog.ViewLimit <= 0:
		return fmt.Errorf("%w: catalog.view_limit must be positive", ErrInvalidConfig)
	case c.Store.PartitionWriteRate < 0:
		return fmt.Errorf("%w: store.partition_write_rate must not be negative", ErrInvalidConfig)
	}

	switch c.Catalog.Fingerprint {
	case "", "concat", "delimited":
	default:
		return fmt.Errorf("%w: unknown catalog.fingerprint %q", ErrInvalidConfig, c.Catalog.Fingerprint)
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
