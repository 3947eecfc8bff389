// Package config содержит логику чтения конфигурации клиента магазина.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента магазина.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	StateDir       string        `env:"STATE_DIR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envAPIBaseURL := cfg.APIBaseURL
	envStateDir := cfg.StateDir
	envRequestTimeout := cfg.RequestTimeout

	flag.StringVar(&cfg.APIBaseURL, "b", "https://localhost:7200/api/v1", "backend API base URL")
	flag.StringVar(&cfg.StateDir, "s", ".storefront", "directory for persisted client state")
	flag.DurationVar(&cfg.RequestTimeout, "t", 10*time.Second, "HTTP request timeout")

	flag.Parse()

	if envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}
	if envStateDir != "" {
		cfg.StateDir = envStateDir
	}
	if envRequestTimeout != 0 {
		cfg.RequestTimeout = envRequestTimeout
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://localhost:7200/api/v1"
	}

	return cfg, nil
}
