package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired sets the variables Load refuses to start without.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_CLIENT_ID", "client-id")
	t.Setenv("DISCORD_CLIENT_SECRET", "client-secret")
	t.Setenv("DISCORD_REDIRECT_URI", "http://localhost:3000/auth/callback")
	t.Setenv("OAUTH_STATE_SECRET", "a-state-secret-of-32-characters!")
}

// clearOptional makes the defaults observable regardless of the caller's env.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "DATA_DIR", "STATIC_DIR", "LOG_LEVEL", "COOKIE_SECURE", "REDIS_URL"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearOptional(t)
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.CookieSecure)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "client-id", cfg.DiscordClientID)
	assert.Equal(t, "http://localhost:3000/auth/callback", cfg.DiscordRedirectURI)
}

func TestLoad_Overrides(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DATA_DIR", "/var/lib/aptx")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "/var/lib/aptx", cfg.DataDir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("DISCORD_CLIENT_SECRET", "")
	t.Setenv("OAUTH_STATE_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_CLIENT_SECRET")
	assert.Contains(t, err.Error(), "OAUTH_STATE_SECRET")
	assert.NotContains(t, err.Error(), "DISCORD_CLIENT_ID")
}

func TestLoad_ShortStateSecret(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("OAUTH_STATE_SECRET", "too-short")

	_, err := Load("")
	assert.ErrorContains(t, err, "at least 16 characters")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port not a number", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"bad bool", "COOKIE_SECURE", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOptional(t)
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	os.Unsetenv("DISCORD_CLIENT_ID")
	t.Setenv("PORT", "4000")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DISCORD_CLIENT_ID=from-file\nPORT=5000\nSTATIC_DIR=web\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Cleanup(func() { os.Unsetenv("STATIC_DIR") })

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.DiscordClientID)
	assert.Equal(t, "web", cfg.StaticDir)
	// the process environment wins over the file
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearOptional(t)
	setRequired(t)

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
