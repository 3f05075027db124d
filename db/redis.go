// file: db/redis.go

package db

import (
	"context"
	"fmt"
	"go-property-api/config"
	"go-property-api/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes and returns a new Redis client.
// A nil client and nil error mean Redis is not configured.
func ConnectRedis() (*redis.Client, error) {
	cfg := config.AppConfig.Redis
	if cfg.Host == "" {
		logger.Log.Info("Redis host not configured, rate limiting disabled")
		return nil, nil
	}

	port := cfg.Port
	if port == "" {
		port = "6379"
	}
	redisAddr := fmt.Sprintf("%s:%s", cfg.Host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping Redis")
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", redisAddr).Info("Redis connection established successfully")
	return rdb, nil
}
