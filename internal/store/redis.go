package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client used by the rate limiter and health checks.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis. Timeouts come from config; they stay short so
// a dead redis degrades rate limiting instead of stalling requests.
func NewRedis(addr string, dialTimeout, opTimeout time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
