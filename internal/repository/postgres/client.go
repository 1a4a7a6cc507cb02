package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eventsync/notification-service/internal/config"
)

// Client wraps the Postgres connection
type Client struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewClient opens a gorm connection against the event store database
// and verifies it with a ping.
func NewClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	log.Info("Connecting to Postgres")

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("Failed to ping Postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	log.Info("Postgres connection established successfully")

	return &Client{db: db, log: log}, nil
}

// DB returns the underlying gorm handle
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close closes the connection pool
func (c *Client) Close() error {
	c.log.Info("Closing Postgres connection")
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
