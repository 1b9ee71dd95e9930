// Package redis opens the client behind the distributed lineage lock.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
	"github.com/yi-nology/stl_backend/pkg/config"
)

const defaultAddress = "localhost:6379"

// NewClient creates a Redis client based on the provided configuration.
// Returns nil, nil if Redis is not enabled; callers then fall back to the
// in-process lineage lock.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	addr := cfg.Address
	if addr == "" {
		addr = defaultAddress
	}

	// a lock command must not outlive the caller's acquire budget
	opTimeout := cfg.LockTimeout
	if opTimeout <= 0 || opTimeout > 3*time.Second {
		opTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	hlog.Infof("redis connected: addr=%s db=%d", addr, cfg.DB)

	return client, nil
}
