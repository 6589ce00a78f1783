// Package config provides configuration loading.
//
// Configuration is read from a TOML file under the XDG config directory
// (~/.config/turnero/config.toml by default) and overridden by
// TURNERO_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// File permission constants.
const (
	// FileModeDir is the permission for directories (rwxr-xr-x).
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--).
	FileModeFile os.FileMode = 0644
)

// Remote holds the connection settings for the remote system of record.
type Remote struct {
	// BaseURL is the remote REST base, e.g. "https://sheets.example/api".
	BaseURL string `toml:"base_url"`
	// APIKey is the server-held shared secret identifying the gateway
	// to the remote system. Never exposed to dashboard callers.
	APIKey string `toml:"api_key"`
	// TimeoutSeconds bounds each outbound request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Gateway holds the HTTP gateway settings.
type Gateway struct {
	// Listen is the address the serve command binds to.
	Listen string `toml:"listen"`
	// URL is where dashboard clients reach the gateway.
	URL string `toml:"url"`
}

// Operator identifies the staff member running the dashboard.
type Operator struct {
	Usuario string `toml:"usuario"`
	Negocio string `toml:"negocio"`
}

// Dashboard holds the reconciliation session settings.
type Dashboard struct {
	// Vertical selects the business vertical: "barberia" or "carrito".
	Vertical string `toml:"vertical"`
	// PollSeconds overrides the vertical's default poll period when
	// positive.
	PollSeconds int `toml:"poll_seconds"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Config is the full application configuration.
type Config struct {
	Remote    Remote    `toml:"remote"`
	Gateway   Gateway   `toml:"gateway"`
	Operator  Operator  `toml:"operator"`
	Dashboard Dashboard `toml:"dashboard"`
	Log       Log       `toml:"log"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Remote: Remote{
			TimeoutSeconds: 10,
		},
		Gateway: Gateway{
			Listen: ":8080",
		},
		Dashboard: Dashboard{
			Vertical: "barberia",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "turnero", "config.toml")
}

// Load reads configuration from the given path, falling back to
// defaults when the file does not exist, then applies environment
// overrides. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; env and defaults apply.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config values from TURNERO_* variables.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TURNERO_REMOTE_BASE_URL", &cfg.Remote.BaseURL)
	setString("TURNERO_API_KEY", &cfg.Remote.APIKey)
	setString("TURNERO_LISTEN", &cfg.Gateway.Listen)
	setString("TURNERO_GATEWAY_URL", &cfg.Gateway.URL)
	setString("TURNERO_USUARIO", &cfg.Operator.Usuario)
	setString("TURNERO_NEGOCIO", &cfg.Operator.Negocio)
	setString("TURNERO_VERTICAL", &cfg.Dashboard.Vertical)
	setString("TURNERO_LOG_LEVEL", &cfg.Log.Level)
	if v := os.Getenv("TURNERO_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dashboard.PollSeconds = n
		}
	}
}

// validate checks that config values are usable.
func (c *Config) validate() error {
	if c.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote.timeout_seconds must be positive, got %d", c.Remote.TimeoutSeconds)
	}
	if c.Dashboard.PollSeconds < 0 {
		return fmt.Errorf("dashboard.poll_seconds must not be negative, got %d", c.Dashboard.PollSeconds)
	}
	return nil
}

// RemoteTimeout returns the outbound request timeout.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// PollPeriod returns the configured poll override, or zero when the
// vertical default should be used.
func (c *Config) PollPeriod() time.Duration {
	if c.Dashboard.PollSeconds > 0 {
		return time.Duration(c.Dashboard.PollSeconds) * time.Second
	}
	return 0
}

// Save writes the configuration to the given path, creating parent
// directories as needed. An empty path means DefaultPath.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), FileModeDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, FileModeFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
