package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Auth     AuthConfig     `toml:"auth"`
	Client   ClientConfig   `toml:"client"`
	Browse   BrowseConfig   `toml:"browse"`
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
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	CoversDir    string `toml:"covers_dir"`
	ReadTimeout  int    `toml:"read_timeout_seconds"`
	WriteTimeout int    `toml:"write_timeout_seconds"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig selects and configures the song list cache.
//
// Driver is one of "memory", "redis" or "none".
type CacheConfig struct {
	Driver        string `toml:"driver"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// AuthConfig configures browser login through an OAuth2 authorization-code provider.
//
// Login is disabled while ClientID is empty; API tokens keep working either way.
type AuthConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"userinfo_url"`
	RedirectURL  string   `toml:"redirect_url"`
	Scopes       []string `toml:"scopes"`
	SessionHours int      `toml:"session_hours"`
	SecureCookie bool     `toml:"secure_cookie"`
}

// Enabled reports whether a provider is configured.
func (a AuthConfig) Enabled() bool { return a.ClientID != "" }

// SessionTTL returns how long a login lasts.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionHours) * time.Hour
}

// ClientConfig contains settings for commands that talk to a running server.
type ClientConfig struct {
	ServerURL string  `toml:"server_url"`
	Token     string  `toml:"token"`
	BatchSize int     `toml:"batch_size"`
	RateLimit float64 `toml:"rate_limit"`
}

// BrowseConfig contains terminal browser settings.
type BrowseConfig struct {
	DebounceMillis int    `toml:"debounce_ms"`
	PreloadScreens int    `toml:"preload_screens"`
	LogPath        string `toml:"log_path"`
}

// Debounce returns the search input debounce window.
func (b BrowseConfig) Debounce() time.Duration {
	return time.Duration(b.DebounceMillis) * time.Millisecond
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports settings that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("%w: unknown cache driver %q", ErrInvalidConfig, c.Cache.Driver)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}

	if c.Auth.Enabled() {
		for key, value := range map[string]string{
			"auth_url":     c.Auth.AuthURL,
			"token_url":    c.Auth.TokenURL,
			"userinfo_url": c.Auth.UserInfoURL,
			"redirect_url": c.Auth.RedirectURL,
		} {
			if value == "" {
				return fmt.Errorf("%w: auth.%s is required when auth.client_id is set", ErrInvalidConfig, key)
			}
		}
		if c.Auth.SessionHours <= 0 {
			return fmt.Errorf("%w: auth.session_hours must be positive", ErrInvalidConfig)
		}
	}

	if c.Client.BatchSize < 0 {
		return fmt.Errorf("%w: client batch_size must not be negative", ErrInvalidConfig)
	}

	return nil
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
