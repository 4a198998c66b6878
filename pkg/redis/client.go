// Package redis wraps the go-redis client behind the project's redis
// configuration. Two consumers share one client: the reset-token store and
// the email job queue.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamforge/backend/config"
)

// Client wraps a go-redis client with the configured logger.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient creates a Redis client from the redis configuration and verifies
// connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Client{Client: rdb, logger: logger}, nil
}
