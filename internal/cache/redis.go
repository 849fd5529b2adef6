package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a Store shared between API replicas.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedis(cfg RedisConfig, log *slog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Redis{client: client, ttl: cfg.TTL, log: log}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

// Delete must not be skipped silently: a stale list would outlive a write.
func (c *Redis) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.ErrorContext(ctx, "cache invalidation failed", "key", key, "err", err)
	}
}

// Ping checks redis connectivity.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}
