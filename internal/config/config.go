package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env             string        `mapstructure:"APP_ENV"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	DBDriver        string        `mapstructure:"DB_DRIVER"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	ValkeyAddr      string        `mapstructure:"VALKEY_ADDR"`
	ValkeyPassword  string        `mapstructure:"VALKEY_PASSWORD"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	ChatPageSize    int           `mapstructure:"CHAT_PAGE_SIZE"`
	UserPageSize    int           `mapstructure:"USER_PAGE_SIZE"`
	MaxPageSize     int           `mapstructure:"MAX_PAGE_SIZE"`
	CORSOrigin      string        `mapstructure:"CORS_ALLOWED_ORIGIN"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"APP_ENV":             EnvDevelopment,
	"HTTP_ADDR":           ":8080",
	"DB_DRIVER":           "sqlite",
	"DATABASE_URL":        "file:chat.db?_foreign_keys=on",
	"VALKEY_ADDR":         "",
	"VALKEY_PASSWORD":     "",
	"JWT_SECRET":          "",
	"TOKEN_TTL":           "720h",
	"CHAT_PAGE_SIZE":      2,
	"USER_PAGE_SIZE":      10,
	"MAX_PAGE_SIZE":       100,
	"CORS_ALLOWED_ORIGIN": "http://127.0.0.1:5173",
	"LOG_LEVEL":           "info",
	"SHUTDOWN_TIMEOUT":    "10s",
}

// devSecret signs tokens when no secret is configured outside production.
const devSecret = "insecure-development-secret"

// Load reads the given .env files (missing files are skipped) and then the
// process environment. Environment variables win over .env values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.Env != EnvProduction {
		cfg.JWTSecret = devSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("APP_ENV: unknown environment %q", c.Env)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER: unknown driver %q", c.DBDriver)
	}
	if c.DBDriver != "memory" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.ChatPageSize <= 0 || c.UserPageSize <= 0 || c.MaxPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
