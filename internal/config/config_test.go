package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agrichain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "gemini", cfg.Provider)
	require.Equal(t, "gemini-2.5-flash", cfg.Model)
	require.Equal(t, "gemini-2.5-flash-preview-tts", cfg.TTSModel)
	require.Equal(t, "Algenib", cfg.Voice)
	require.Equal(t, "Tamil", cfg.Language)
	require.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	require.Equal(t, AudioConfig{SampleRate: 24000, Channels: 1, BitDepth: 16}, cfg.Audio)
	require.Equal(t, "memory", cfg.Store.Driver)
	require.Equal(t, "agrichain.db", cfg.Store.SQLitePath)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
	require.Empty(t, cfg.APIKey)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeYAML(t, `
provider: openai
language: Hindi
http_timeout: 15s
audio:
  sample_rate: 16000
store:
  driver: sqlite
  sqlite_path: /tmp/ledger.db
log:
  level: debug
  format: text
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "openai", cfg.Provider)
	require.Equal(t, "gpt-4o-mini", cfg.Model)
	require.Equal(t, "alloy", cfg.Voice)
	require.Equal(t, "Hindi", cfg.Language)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 16000, cfg.Audio.SampleRate)
	require.Equal(t, 1, cfg.Audio.Channels)
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "/tmp/ledger.db", cfg.Store.SQLitePath)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeYAML(t, "model: gemini-2.5-pro\nstore:\n  driver: memory\n")
	t.Setenv("AGRICHAIN_API_KEY", " AIza-env ")
	t.Setenv("AGRICHAIN_STORE_DRIVER", "DynamoDB")
	t.Setenv("AGRICHAIN_STORE_TABLE", "agrichain-ledger")
	t.Setenv("AGRICHAIN_HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "AIza-env", cfg.APIKey)
	require.Equal(t, "gemini-2.5-pro", cfg.Model)
	require.Equal(t, "dynamodb", cfg.Store.Driver)
	require.Equal(t, "agrichain-ledger", cfg.Store.Table)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config: read")
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"provider":       "provider: claude\n",
		"store driver":   "store:\n  driver: redis\n",
		"dynamodb table": "store:\n  driver: dynamodb\n",
		"bit depth":      "audio:\n  bit_depth: 12\n",
		"sample rate":    "audio:\n  sample_rate: 0\n",
		"rate overflow":  "audio:\n  sample_rate: 5000000000\n",
		"timeout":        "http_timeout: 0s\n",
		"language":       "language: \"  \"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			require.Error(t, err)
		})
	}
}
