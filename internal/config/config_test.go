package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "anonymous", cfg.Server.User)
	assert.Equal(t, "1.1.1.1:443", cfg.Network.ProbeAddr)
	assert.Equal(t, 5000, cfg.Network.ProbeIntervalMS)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
server:
  url: wss://chat.example.com/ws
  user: alice
network:
  probeAddr: 8.8.8.8:53
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws", cfg.Server.URL)
	assert.Equal(t, "alice", cfg.Server.User)
	assert.Equal(t, "8.8.8.8:53", cfg.Network.ProbeAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched sections keep defaults
	assert.Equal(t, 5000, cfg.Network.ProbeIntervalMS)
	assert.True(t, cfg.Storage.Enabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ExpandsAPIKey(t *testing.T) {
	t.Setenv("DRIFTCHAT_TEST_KEY", "sekrit")
	path := writeConfig(t, `
server:
  url: wss://chat.example.com/ws
  apiKey: ${DRIFTCHAT_TEST_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Server.APIKey)
}

func TestLoad_UnsetEnvVarLeftAlone(t *testing.T) {
	path := writeConfig(t, `
server:
  url: wss://chat.example.com/ws
  apiKey: ${DRIFTCHAT_DEFINITELY_UNSET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DRIFTCHAT_DEFINITELY_UNSET}", cfg.Server.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	cfg.Server.URL = "wss://chat.example.com/ws"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate_OK(t *testing.T) {
	cfg := Defaults()
	cfg.Server.URL = "wss://chat.example.com/ws"
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{"missing url", func(c *Config) { c.Server.URL = "" }, "server.url"},
		{"http scheme", func(c *Config) { c.Server.URL = "https://example.com" }, "server.url"},
		{"bad probe addr", func(c *Config) { c.Network.ProbeAddr = "no-port" }, "network.probeAddr"},
		{"negative interval", func(c *Config) { c.Network.ProbeIntervalMS = -1 }, "network.probeIntervalMs"},
		{"negative timeout", func(c *Config) { c.Network.ProbeTimeoutMS = -5 }, "network.probeTimeoutMs"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Server.URL = "wss://chat.example.com/ws"
			tt.mutate(&cfg)

			issues := Validate(&cfg)
			require.NotEmpty(t, issues)
			found := false
			for _, issue := range issues {
				if issue.Path == tt.wantPath {
					found = true
					assert.NotEmpty(t, issue.String())
				}
			}
			assert.True(t, found, "expected an issue at %s, got %v", tt.wantPath, issues)
		})
	}
}

func TestResolvePaths_Override(t *testing.T) {
	base := t.TempDir()
	t.Setenv("DRIFTCHAT_HOME", base)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, paths.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(base, "data"), paths.Data)

	require.NoError(t, paths.EnsureBase())
	assert.DirExists(t, paths.Data)
}
