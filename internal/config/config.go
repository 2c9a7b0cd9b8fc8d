package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/kursadbilgin/contact-relay/internal/relay"
)

type Config struct {
	FallbackURL   string `env:"RELAY_FALLBACK_URL,default=http://127.0.0.1:5500/send-mail"`
	TimeoutMillis int    `env:"RELAY_TIMEOUT_MS,default=5000"`
	PageURL       string `env:"PAGE_URL"`
	APIPort       int    `env:"API_PORT,default=8080"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TimeoutMillis <= 0 {
		return nil, fmt.Errorf("failed to load config: RELAY_TIMEOUT_MS must be positive, got %d", cfg.TimeoutMillis)
	}
	return &cfg, nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Location parses PageURL. An empty PageURL yields a nil location.
func (c *Config) Location() (*relay.Location, error) {
	if c.PageURL == "" {
		return nil, nil
	}
	return relay.ParseLocation(c.PageURL)
}
