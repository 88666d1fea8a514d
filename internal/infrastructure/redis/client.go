package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(address string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address, // e.g., "localhost:6379"
		PoolSize: 100,     // Maximum number of socket connections
	})

	// Ping to test connection on startup
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
