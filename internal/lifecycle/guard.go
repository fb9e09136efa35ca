package lifecycle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"number-inventory/internal/apperr"
	"number-inventory/pkg/logger"
	"number-inventory/pkg/utils"
)

// ImportGuard limits how many bulk imports run at once.
type ImportGuard interface {
	// Acquire returns a release func, or a Conflict error when no slot is free.
	Acquire(ctx context.Context) (release func(), err error)
}

const importLockKey = "inventory:import:running"

// RedisImportGuard allows one import at a time across every API instance sharing rdb.
// ttl bounds how long a crashed import can hold the slot.
type RedisImportGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisImportGuard(rdb *redis.Client, ttl time.Duration) *RedisImportGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisImportGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisImportGuard) Acquire(ctx context.Context) (func(), error) {
	ok, err := utils.AcquireSlot(ctx, g.rdb, importLockKey, 1, g.ttl)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	if !ok {
		return nil, apperr.Conflict("Another import is already running")
	}
	return func() {
		// The request context may already be cancelled.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := utils.ReleaseSlot(relCtx, g.rdb, importLockKey); err != nil {
			logger.From(ctx).Warn("release import slot failed", "err", err)
		}
	}, nil
}

// LocalImportGuard is the single-process fallback when redis is not configured.
type LocalImportGuard struct {
	slot chan struct{}
}

func NewLocalImportGuard() *LocalImportGuard {
	return &LocalImportGuard{slot: make(chan struct{}, 1)}
}

func (g *LocalImportGuard) Acquire(context.Context) (func(), error) {
	select {
	case g.slot <- struct{}{}:
		return func() { <-g.slot }, nil
	default:
		return nil, apperr.Conflict("Another import is already running")
	}
}
