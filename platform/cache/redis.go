// Package cache provides Redis connection infrastructure.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"fmt"

	"lead_management_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewClient parses the configured Redis URL and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
