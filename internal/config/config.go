// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment win over it. Values are
// then read through viper with the defaults below. The Discord credentials
// and the state secret have no default: a missing one stops the server at
// startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPort      = 3000
	DefaultDataDir   = "data"
	DefaultStaticDir = "public"
	DefaultLogLevel  = "info"

	minStateSecretLen = 16
)

// Config is everything cmd/server needs to wire the application.
type Config struct {
	Port      int
	DataDir   string
	StaticDir string
	LogLevel  slog.Level

	// CookieSecure sets the Secure flag on the session cookie. Turn it off
	// only for plain-HTTP local development.
	CookieSecure bool

	// RedisURL selects the Redis session store when non-empty, e.g.
	// redis://localhost:6379/0. Empty keeps sessions in memory.
	RedisURL string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string

	// StateSecret signs the OAuth state parameter.
	StateSecret string
}

// Load reads envFile (if it exists) and the process environment.
// Pass "" to skip the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("DATA_DIR", DefaultDataDir)
	v.SetDefault("STATIC_DIR", DefaultStaticDir)
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("REDIS_URL", "")

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("PORT")))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", v.GetString("PORT"))
	}

	level, err := ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	secure, err := strconv.ParseBool(strings.TrimSpace(v.GetString("COOKIE_SECURE")))
	if err != nil {
		return nil, fmt.Errorf("config: invalid COOKIE_SECURE %q", v.GetString("COOKIE_SECURE"))
	}

	cfg := &Config{
		Port:                port,
		DataDir:             v.GetString("DATA_DIR"),
		StaticDir:           v.GetString("STATIC_DIR"),
		LogLevel:            level,
		CookieSecure:        secure,
		RedisURL:            strings.TrimSpace(v.GetString("REDIS_URL")),
		DiscordClientID:     v.GetString("DISCORD_CLIENT_ID"),
		DiscordClientSecret: v.GetString("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURI:  v.GetString("DISCORD_REDIRECT_URI"),
		StateSecret:         v.GetString("OAUTH_STATE_SECRET"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every missing required variable at once.
func (c *Config) validate() error {
	var missing []string
	for _, req := range []struct{ name, value string }{
		{"DISCORD_CLIENT_ID", c.DiscordClientID},
		{"DISCORD_CLIENT_SECRET", c.DiscordClientSecret},
		{"DISCORD_REDIRECT_URI", c.DiscordRedirectURI},
		{"OAUTH_STATE_SECRET", c.StateSecret},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(c.StateSecret) < minStateSecretLen {
		return fmt.Errorf("config: OAUTH_STATE_SECRET must be at least %d characters", minStateSecretLen)
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLevel maps debug, info, warn or error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
