package shared

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvDatabasePath = "SONGCART_DB_PATH"
	EnvHost         = "SONGCART_HOST"
	EnvPort         = "SONGCART_PORT"
	EnvDefaultGenre = "SONGCART_DEFAULT_GENRE"
	EnvLogLevel     = "SONGCART_LOG_LEVEL"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides config fields with SONGCART_* environment variables.
func ApplyEnv(config *Config) error {
	if v, ok := os.LookupEnv(EnvDatabasePath); ok && v != "" {
		config.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvHost); ok && v != "" {
		config.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvPort, v)
		}
		config.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvDefaultGenre); ok && v != "" {
		config.Catalog.DefaultGenre = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		config.Log.Level = v
	}
	return nil
}
