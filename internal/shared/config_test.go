package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./songbook.db" {
			t.Errorf("expected database path ./songbook.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Cache.Driver != "memory" {
			t.Errorf("expected memory cache driver, got %s", config.Cache.Driver)
		}

		if config.Browse.Debounce() != 100*time.Millisecond {
			t.Errorf("expected 100ms debounce, got %v", config.Browse.Debounce())
		}

		if config.Client.ServerURL != "http://127.0.0.1:3000" {
			t.Errorf("expected client server URL http://127.0.0.1:3000, got %s", config.Client.ServerURL)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[cache]
driver = "redis"
redis_addr = "cache:6379"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Cache.RedisAddr != "cache:6379" {
			t.Errorf("expected redis addr cache:6379, got %s", config.Cache.RedisAddr)
		}

		if config.Client.BatchSize != 50 {
			t.Errorf("unset keys should keep defaults, got batch size %d", config.Client.BatchSize)
		}
	})

	t.Run("LoadConfig rejects unknown cache driver", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[cache]\ndriver = \"memcached\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig auth", func(t *testing.T) {
		dir := t.TempDir()

		incomplete := filepath.Join(dir, "incomplete.toml")
		os.WriteFile(incomplete, []byte("[auth]\nclient_id = \"songbook\"\n"), 0644)
		if _, err := LoadConfig(incomplete); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for missing provider URLs, got %v", err)
		}

		complete := filepath.Join(dir, "complete.toml")
		content := "[auth]\nclient_id = \"songbook\"\n" +
			"auth_url = \"https://id.example/authorize\"\n" +
			"token_url = \"https://id.example/token\"\n" +
			"userinfo_url = \"https://id.example/me\"\n"
		os.WriteFile(complete, []byte(content), 0644)

		config, err := LoadConfig(complete)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if !config.Auth.Enabled() {
			t.Error("expected auth to be enabled")
		}
		if config.Auth.SessionTTL() != 168*time.Hour {
			t.Errorf("expected default session ttl, got %v", config.Auth.SessionTTL())
		}
		if config.Auth.RedirectURL == "" {
			t.Error("expected default redirect url")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
