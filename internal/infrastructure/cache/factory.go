package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewIdempotencyStore builds the store selected by cfg.Idempotency.Store. A
// Redis store that cannot be reached at startup is an error rather than a
// silent fallback, since a per-process store would let replays through on
// other instances.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr(), err)
		}
		logger.Info("using redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return NewRedisIdempotencyStore(client, ""), nil
	case "memory", "":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", cfg.Idempotency.Store)
	}
}

// ToSharedConfig converts the configuration section to the form the payment service takes
func ToSharedConfig(c config.IdempotencyConfig) shared.IdempotencyConfig {
	return shared.IdempotencyConfig{TTL: c.TTL, Enabled: c.Enabled}
}
