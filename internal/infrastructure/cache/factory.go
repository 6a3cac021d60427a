package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
	"github.com/sudharshini/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the short-lived state the services need. With Redis they
// are shared across instances; otherwise they live in process memory.
type Stores struct {
	Idempotency shared.IdempotencyStore
	OTP         identity.OTPStore
	Blacklist   auth.TokenBlacklist
	client      *redis.Client
}

// NewStores connects to Redis when enabled. An unreachable Redis falls back
// to memory outside production and is an error in production.
func NewStores(ctx context.Context, cfg config.RedisConfig, production bool, logger *zap.Logger) (*Stores, error) {
	if cfg.Enabled {
		client, err := connect(ctx, cfg)
		if err == nil {
			logger.Info("using Redis for otp, idempotency and token revocation", zap.String("addr", cfg.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client),
				OTP:         NewRedisOTPStore(client),
				Blacklist:   auth.NewRedisTokenBlacklist(client),
				client:      client,
			}, nil
		}
		if production {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}

	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(5 * time.Minute),
		OTP:         NewInMemoryOTPStore(),
		Blacklist:   auth.NewInMemoryTokenBlacklist(),
	}, nil
}

func connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Close releases the Redis client and stops in-memory sweepers
func (s *Stores) Close() error {
	_ = s.Idempotency.Close()
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
