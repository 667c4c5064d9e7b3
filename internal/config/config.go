package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/blindtest.db"`
	RedisURL string     `env:"REDIS_URL"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://api.deezer.com"`
	CatalogProxies []string      `env:"CATALOG_PROXIES" envSeparator:","`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
