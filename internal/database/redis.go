package database

import (
	"context"

	"github.com/redis/go-redis/v9"

	"registry-web/internal/config"
)

// NewRedis connects to the Redis instance backing job progress and the task
// queue, failing fast when it is unreachable.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
