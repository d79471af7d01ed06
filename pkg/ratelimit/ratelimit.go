// Package ratelimit provides a Redis-backed fixed-window request limiter
// and the HTTP middleware that applies it.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/caduceus/pkg/lifecycle"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

const callTimeout = 2 * time.Second

// Limiter counts requests per key in fixed windows of a shared Redis instance.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Limiter from cfg. The Redis connection is verified on Start.
func New(cfg *Config, logger *slog.Logger) (*Limiter, error) {
	if cfg.Limit <= 0 || cfg.WindowDuration() <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}

	return &Limiter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: cfg.Prefix,
		limit:  cfg.Limit,
		window: cfg.WindowDuration(),
		logger: logger.With("system", "ratelimit"),
		now:    time.Now,
	}, nil
}

// Start registers a startup ping and a shutdown close with the coordinator.
func (l *Limiter) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), callTimeout)
		defer cancel()

		if err := l.client.Ping(ctx).Err(); err != nil {
			l.logger.Error("redis ping failed", "error", err)
			return
		}
		l.logger.Info("redis connection established")
	})

	lc.OnShutdown("ratelimit", func() {
		<-lc.Context().Done()
		if err := l.client.Close(); err != nil {
			l.logger.Error("redis close failed", "error", err)
			return
		}
		l.logger.Info("redis connection closed")
	})

	return nil
}

// Allow reports whether key is within quota for the current window.
// Redis failures fail closed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		l.logger.Error("rate limit check failed", "key", key, "error", err)
		return false
	}
	return count <= int64(l.limit)
}

// Close releases the Redis client.
func (l *Limiter) Close() error {
	return l.client.Close()
}
