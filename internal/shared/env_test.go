package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Run("overrides fields", func(t *testing.T) {
		t.Setenv(EnvDatabasePath, "/tmp/env.db")
		t.Setenv(EnvHost, "0.0.0.0")
		t.Setenv(EnvPort, "9999")
		t.Setenv(EnvDefaultGenre, "Blues")
		t.Setenv(EnvLogLevel, "debug")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Database.Path != "/tmp/env.db" {
			t.Errorf("expected db path override, got %s", config.Database.Path)
		}
		if config.Server.Addr() != "0.0.0.0:9999" {
			t.Errorf("expected addr override, got %s", config.Server.Addr())
		}
		if config.Catalog.DefaultGenre != "Blues" {
			t.Errorf("expected genre override, got %s", config.Catalog.DefaultGenre)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level override, got %s", config.Log.Level)
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv(EnvPort, "eighty")

		err := ApplyEnv(DefaultConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("loads file without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "SONGCART_DEFAULT_GENRE=Funk\nSONGCART_HOST=10.0.0.1\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		t.Setenv(EnvHost, "127.0.0.1")
		t.Setenv(EnvDefaultGenre, "")
		os.Unsetenv(EnvDefaultGenre)

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}

		if got := os.Getenv(EnvDefaultGenre); got != "Funk" {
			t.Errorf("expected genre from .env, got %q", got)
		}
		if got := os.Getenv(EnvHost); got != "127.0.0.1" {
			t.Errorf("existing variable should win, got %q", got)
		}
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
