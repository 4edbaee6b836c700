package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisNotReady is returned when Redis does not answer a ping within the
// connect budget.
var ErrRedisNotReady = errors.New("redis did not become ready")

// RedisOptions configures ConnectRedis.
type RedisOptions struct {
	Addr          string
	Password      string
	DB            int
	Attempts      int
	RetryInterval time.Duration
}

// ConnectRedis opens a Redis client and pings it, retrying up to opts.Attempts
// times. The client is closed on failure.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is empty")
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return client, nil
		}
		if attempt == opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(opts.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("%w: %v", ErrRedisNotReady, lastErr)
}
