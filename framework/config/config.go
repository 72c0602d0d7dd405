package config

import (
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Host  string
	Port  string
}

type ContainerConfig struct {
	// StrictInjection turns an unresolved injection point into a startup
	// error. Off by default: the slot is left unset.
	StrictInjection bool
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "EasyFramework"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
			Host:  env("APP_HOST", ""),
			Port:  env("APP_PORT", "8080"),
		},
		Container: ContainerConfig{
			StrictInjection: envBool("INJECT_STRICT", false),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "text"),
		},
	}
}

// Addr returns the listen address, e.g. ":8080".
func (c *Config) Addr() string {
	return net.JoinHostPort(c.App.Host, c.App.Port)
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
