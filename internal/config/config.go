// Package config handles the XDG configuration directory, file paths and
// client settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskdesk"

	// SessionFile is the stored session token filename.
	SessionFile = "session.json"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// EnvFile is the optional dotenv filename.
	EnvFile = ".env"

	// EnvPrefix prefixes every environment override, e.g. TASKDESK_API_BASE_URL.
	EnvPrefix = "TASKDESK"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// API holds the remote API settings.
	API APIConfig `mapstructure:"api"`

	// Logger holds the logging settings.
	Logger LoggerConfig `mapstructure:"logger"`
}

// APIConfig holds the remote API settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst     int           `mapstructure:"burst"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// New creates a new Config with the default or specified config directory
// and loads settings from config.yaml, .env and TASKDESK_* variables.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdesk or $HOME/.config/taskdesk.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config for dir with built-in settings only.
func Default(dir string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{Dir: dir}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

func (c *Config) load() error {
	// Missing .env is fine.
	_ = godotenv.Load(filepath.Join(c.Dir, EnvFile))

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	settingsPath := filepath.Join(c.Dir, SettingsFile)
	if _, err := os.Stat(settingsPath); err == nil {
		v.SetConfigFile(settingsPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5001/")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.burst", 5)

	v.SetDefault("logger.level", "error")
	v.SetDefault("logger.format", "console")
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return errors.New("api.rate_limit and api.burst must not be negative")
	}
	if c.Logger.Format != "console" && c.Logger.Format != "json" {
		return fmt.Errorf("logger.format must be console or json: %q", c.Logger.Format)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session token.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// LogLevel returns the effective log level; Debug overrides the setting.
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	if c.Logger.Level == "" {
		return "error"
	}
	return c.Logger.Level
}
