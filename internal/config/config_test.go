package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Bring.APIKey = "key"
	cfg.Bring.UserUUID = "user-uuid"
	cfg.Bring.ListUUID = "list-uuid"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://api.getbring.com/rest/v2", cfg.Bring.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Bring.Timeout.Duration())
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "de", cfg.Speech.Locale)
	assert.Equal(t, "addItem", cfg.Speech.Intents.Add)
	assert.Equal(t, "delItem", cfg.Speech.Intents.Remove)
	assert.Equal(t, "checkList", cfg.Speech.Intents.Check)
	assert.Equal(t, "readList", cfg.Speech.Intents.Read)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.Bring.APIKey = "" }, "bring.api_key"},
		{"missing user uuid", func(c *Config) { c.Bring.UserUUID = "" }, "bring.user_uuid"},
		{"missing list uuid", func(c *Config) { c.Bring.ListUUID = "" }, "bring.list_uuid"},
		{"zero timeout", func(c *Config) { c.Bring.Timeout = 0 }, "bring.timeout"},
		{"missing nats url", func(c *Config) { c.NATS.URL = "" }, "nats.url"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing locale", func(c *Config) { c.Speech.Locale = "" }, "speech.locale"},
		{"missing intent name", func(c *Config) { c.Speech.Intents.Read = "" }, "speech.intents.read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
bring:
  api_key: file-key
  user_uuid: file-user
  list_uuid: file-list
speech:
  locale: en
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PANTRYD_BRING_API_KEY", "env-key")
	t.Setenv("PANTRYD_NATS_URL", "nats://broker:4222")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over file, file wins over defaults.
	assert.Equal(t, "env-key", cfg.Bring.APIKey.Value())
	assert.Equal(t, "file-user", cfg.Bring.UserUUID.Value())
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "en", cfg.Speech.Locale)
	// Untouched values keep their defaults.
	assert.Equal(t, 8732, cfg.Server.Port)
}

func TestLoad_MissingFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("PANTRYD_BRING_API_KEY", "k")
	t.Setenv("PANTRYD_BRING_USER_UUID", "u")
	t.Setenv("PANTRYD_BRING_LIST_UUID", "l")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Speech.Locale)
}

func TestLoad_ValidationFailure(t *testing.T) {
	// No credentials anywhere.
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "hunter2", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
