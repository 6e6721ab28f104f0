package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 2*time.Second, cfg.RedisDialTimeout)
	assert.Equal(t, time.Second, cfg.RedisTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Empty(t, cfg.AdminEmail, "admin bootstrap off by default")
	assert.Empty(t, cfg.AdminPassword)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "1048576")
	t.Setenv("REDIS_DIAL_TIMEOUT", "500ms")
	t.Setenv("REDIS_TIMEOUT", "250ms")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")

	cfg := Load()

	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 500*time.Millisecond, cfg.RedisDialTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RedisTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_TIMEOUT", "soon")
	t.Setenv("MAX_BODY_BYTES", "lots")

	cfg := Load()

	assert.Equal(t, time.Second, cfg.RedisTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
}
