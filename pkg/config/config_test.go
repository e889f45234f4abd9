package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://odyssey-api.example.com"
rpc:
  url: "https://rpc.example.com"
  requests_per_second: 4
bot:
  credentials_file: "wallets.txt"
  max_retries: 5
  retry_delay: "1s"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://odyssey-api.example.com", cfg.API.BaseURL)
	require.Equal(t, "https://rpc.example.com", cfg.RPC.URL)
	require.Equal(t, 4, cfg.RPC.RequestsPerSecond)
	require.Equal(t, "wallets.txt", cfg.Bot.CredentialsFile)
	require.Equal(t, 5, cfg.Bot.MaxRetries)
	require.Equal(t, time.Second, cfg.Bot.RetryDelay)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  credentials_file: "wallets.txt"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://odyssey-api.sonic.game", cfg.API.BaseURL)
	require.Equal(t, "https://devnet.sonic.game", cfg.RPC.URL)
	require.Equal(t, 2, cfg.RPC.RequestsPerSecond)
	require.Equal(t, 5, cfg.RPC.Burst)
	require.Equal(t, 60*time.Second, cfg.RPC.ConfirmTimeout)
	require.Equal(t, 3, cfg.Bot.MaxRetries)
	require.Equal(t, 2*time.Second, cfg.Bot.RetryDelay)
	require.Equal(t, 4*time.Second, cfg.Bot.ActionDelay)
	require.Equal(t, "5 0 * * *", cfg.Bot.Schedule)
	require.True(t, cfg.History.Enabled)
	require.Equal(t, "odyssey-bot.db", cfg.History.Path)
	require.False(t, cfg.Monitoring.Enabled)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
rpc:
  url: "not a url"
bot:
  credentials_file: "wallets.txt"
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation failed")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{name: "console", cfg: LoggingConfig{Level: "debug", Format: "console", OutputPath: "stdout"}},
		{name: "json", cfg: LoggingConfig{Level: "info", Format: "json", OutputPath: "stderr"}},
		{name: "bad level", cfg: LoggingConfig{Level: "loud", Format: "console", OutputPath: "stdout"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}
