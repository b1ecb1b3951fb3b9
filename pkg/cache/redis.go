package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/arsip-desa-api/pkg/config"
)

const dialTimeout = 5 * time.Second

// NewRedis returns a client for the dashboard cache, or nil when caching is
// disabled.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return client, nil
}

// Probe adapts a client to readiness checks.
type Probe struct {
	Client *redis.Client
}

// PingContext reports whether Redis answers.
func (p Probe) PingContext(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
