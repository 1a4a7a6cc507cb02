package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceEnvironment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	ServicePort        string `envconfig:"SERVICE_PORT" default:"8080"`
	DatabaseDSN        string `envconfig:"DATABASE_DSN" required:"true"`
	DBMaxOpenConns     int    `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`
	DBMaxIdleConns     int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	DBConnMaxLifetime  int    `envconfig:"DB_CONN_MAX_LIFETIME_SEC" default:"3600"`
	DiscordBotToken    string `envconfig:"DISCORD_BOT_TOKEN"`
	LookaheadMinutes   int    `envconfig:"LOOKAHEAD_MINUTES" default:"15"`
	DispatchWorkers    int    `envconfig:"DISPATCH_WORKERS" default:"4"`
	DeliveryTimeoutSec int    `envconfig:"DELIVERY_TIMEOUT_SEC" default:"5"`
	ScanTimeoutSec     int    `envconfig:"SCAN_TIMEOUT_SEC" default:"5"`
	CronEnabled        bool   `envconfig:"CRON_ENABLED" default:"false"`
	CronSchedule       string `envconfig:"CRON_SCHEDULE" default:"*/5 * * * *"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.LookaheadMinutes <= 0 {
		return nil, fmt.Errorf("LOOKAHEAD_MINUTES must be positive, got %d", cfg.LookaheadMinutes)
	}
	if cfg.DispatchWorkers <= 0 {
		return nil, fmt.Errorf("DISPATCH_WORKERS must be positive, got %d", cfg.DispatchWorkers)
	}

	return &cfg, nil
}

// Lookahead returns the scan window as a duration.
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.LookaheadMinutes) * time.Minute
}

// DeliveryTimeout bounds a single outbound delivery call.
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSec) * time.Second
}

// ScanTimeout bounds the event store window query.
func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutSec) * time.Second
}
