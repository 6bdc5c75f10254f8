package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultGatewayURL is the gateway endpoint, pinned to protocol v9 with JSON encoding.
	DefaultGatewayURL = "wss://gateway.discord.gg/?v=9&encoding=json"
	// DefaultAPIURL is the REST base used for outgoing messages.
	DefaultAPIURL = "https://discord.com/api/v9"
	// DefaultCapabilities is the identify capability bitmask.
	DefaultCapabilities = 16381
	// EnvPrefix prefixes every environment override, e.g. HEADCORD_LOG_LEVEL.
	EnvPrefix = "HEADCORD"
	// EnvConfigPath names the environment variable holding an explicit config file path.
	EnvConfigPath = "HEADCORD_CONFIG"
)

// Config holds everything the client needs besides the credential.
type Config struct {
	GatewayURL       string        `mapstructure:"gateway_url"`
	APIURL           string        `mapstructure:"api_url"`
	Channel          string        `mapstructure:"channel"`
	LogFile          string        `mapstructure:"log_file"`
	LogLevel         string        `mapstructure:"log_level"`
	DumpFile         string        `mapstructure:"dump_file"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	Capabilities     int           `mapstructure:"capabilities"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		GatewayURL:       DefaultGatewayURL,
		APIURL:           DefaultAPIURL,
		LogFile:          filepath.Join(os.TempDir(), "headcord.log"),
		LogLevel:         "info",
		DumpFile:         "big.json",
		HandshakeTimeout: 10 * time.Second,
		Capabilities:     DefaultCapabilities,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/headcord/config.yaml (or the platform equivalent).
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "headcord", "config.yaml"), nil
}

// Load reads configuration from path. An empty path falls back to DefaultConfigPath,
// which may be absent; an explicit path must exist. Environment variables prefixed
// with HEADCORD_ override file values.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("gateway_url", cfg.GatewayURL)
	v.SetDefault("api_url", cfg.APIURL)
	v.SetDefault("channel", cfg.Channel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("dump_file", cfg.DumpFile)
	v.SetDefault("handshake_timeout", cfg.HandshakeTimeout)
	v.SetDefault("capabilities", cfg.Capabilities)

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		case explicit || !errors.Is(statErr, os.ErrNotExist):
			return Config{}, fmt.Errorf("config %s: %w", path, statErr)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot start with.
func (c Config) Validate() error {
	u, err := url.Parse(c.GatewayURL)
	if err != nil {
		return fmt.Errorf("gateway_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("gateway_url must use ws or wss, got %q", c.GatewayURL)
	}
	api, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if api.Scheme != "http" && api.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https, got %q", c.APIURL)
	}
	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake_timeout must be positive, got %s", c.HandshakeTimeout)
	}
	if c.LogFile == "" {
		return errors.New("log_file is required")
	}
	return nil
}
