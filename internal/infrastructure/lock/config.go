package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
)

// FromConfig builds the configured Locker. The returned close func releases
// any connection the locker holds.
func FromConfig(ctx context.Context, cfg config.LockingConfig) (Locker, func() error, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(), func() error { return nil }, nil
	case "redis":
		ttl, err := cfg.LockTTL()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedis(client, ttl), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown locking backend %q", cfg.Backend)
	}
}
