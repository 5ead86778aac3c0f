package initializers

import (
	"context"
	"fmt"
	"time"

	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectToRedis parses REDIS_URL and pings the server
func ConnectToRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.Info("Connected to Redis")
	return client, nil
}
