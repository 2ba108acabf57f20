package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=8000"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DatabaseURL string `env:"DATABASE_URL, required"`
	JWTSecret   string `env:"JWT_SECRET, required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	CatalogCacheS int    `env:"CATALOG_CACHE_SECONDS, default=60"`

	SMTPHost  string `env:"SMTP_HOST"`
	SMTPPort  int    `env:"SMTP_PORT, default=587"`
	EmailUser string `env:"EMAIL_USER"`
	EmailPass string `env:"EMAIL_PASS"`
}

// Load reads .env when present, then resolves the Config from the
// environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Development reports whether verbose error bodies may be returned.
func (c *Config) Development() bool {
	return c.Env == "development"
}
