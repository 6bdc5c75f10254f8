package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when the default file is missing", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultGatewayURL, cfg.GatewayURL)
		assert.Equal(t, DefaultAPIURL, cfg.APIURL)
		assert.Equal(t, DefaultCapabilities, cfg.Capabilities)
		assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout)
		assert.Equal(t, "big.json", cfg.DumpFile)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
gateway_url: ws://127.0.0.1:9000/gateway
channel: "1234"
handshake_timeout: 3s
log_level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "ws://127.0.0.1:9000/gateway", cfg.GatewayURL)
		assert.Equal(t, "1234", cfg.Channel)
		assert.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "channel: \"1\"\n")
		t.Setenv("HEADCORD_CHANNEL", "2")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "2", cfg.Channel)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid gateway scheme", func(t *testing.T) {
		path := writeConfig(t, "gateway_url: https://example.com\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway_url")
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.HandshakeTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.APIURL = "ftp://example.com"
	assert.Error(t, cfg.Validate())
}
