package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	DB       Database `yaml:"database"`
	Mirror   Mirror   `yaml:"mirror"`
	Auth     Auth     `yaml:"auth"`
	Log      Log      `yaml:"log"`
	HTTP     HTTP     `yaml:"http"`
	Snapshot Snapshot `yaml:"snapshot"`

	RestaurantName string `yaml:"restaurant_name"`
}

type Database struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type Mirror struct {
	WebhookURL string        `yaml:"webhook_url"`
	AutoSync   bool          `yaml:"auto_sync"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Auth struct {
	Enabled       bool   `yaml:"enabled"`
	JWTSecret     string `yaml:"jwt_secret"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

type HTTP struct {
	CORSOrigins  []string `yaml:"cors_origins"`
	RateLimitRPS int      `yaml:"rate_limit_rps"`
}

type Snapshot struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:    "8080",
		GinMode: "debug",
		DB: Database{
			Driver: "sqlite",
			DSN:    "restaurant.db",
		},
		Mirror: Mirror{
			AutoSync: true,
			Timeout:  15 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTP{
			CORSOrigins:  []string{"*"},
			RateLimitRPS: 50,
		},
		Snapshot: Snapshot{
			PollInterval: 10 * time.Second,
		},
		RestaurantName: "Restaurant Pro",
	}
}

// Load loads configuration. Precedence: env var > .env file > CONFIG_FILE yaml > default.
func Load() (Config, error) {
	// .env tidak wajib ada
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.DB.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.DSN = getEnv("DATABASE_DSN", cfg.DB.DSN)
	cfg.Mirror.WebhookURL = getEnv("MIRROR_WEBHOOK_URL", cfg.Mirror.WebhookURL)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminEmail = getEnv("ADMIN_EMAIL", cfg.Auth.AdminEmail)
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.RestaurantName = getEnv("RESTAURANT_NAME", cfg.RestaurantName)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	var err error
	if cfg.Mirror.AutoSync, err = parseBool("MIRROR_AUTO_SYNC", cfg.Mirror.AutoSync); err != nil {
		return err
	}
	if cfg.Auth.Enabled, err = parseBool("AUTH_ENABLED", cfg.Auth.Enabled); err != nil {
		return err
	}
	if cfg.Mirror.Timeout, err = parseDuration("MIRROR_TIMEOUT", cfg.Mirror.Timeout); err != nil {
		return err
	}
	if cfg.Snapshot.PollInterval, err = parseDuration("POLL_INTERVAL", cfg.Snapshot.PollInterval); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.HTTP.RateLimitRPS = n
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (sqlite, mysql, postgres)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
	}
	if c.Snapshot.PollInterval < 0 {
		return fmt.Errorf("POLL_INTERVAL must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid boolean for %s: %s", key, v)
	}
	return b, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid duration for %s: %s", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
