// Package app builds the service graph shared by the API server and numctl.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"number-inventory/internal/audit"
	"number-inventory/internal/auth"
	"number-inventory/internal/config"
	"number-inventory/internal/db"
	"number-inventory/internal/lifecycle"
	"number-inventory/internal/stats"
	"number-inventory/internal/store/sqlstore"
	"number-inventory/internal/users"
	"number-inventory/pkg/utils"
)

const statsCacheTTL = time.Minute

type App struct {
	Config config.Config
	Log    *slog.Logger

	Store  *sqlstore.Store
	Redis  *redis.Client // nil when REDIS_HOST is unset
	Auth   *auth.Manager
	Users  *users.Service
	Stats  *stats.Service
	Engine *lifecycle.Engine
}

// Open connects to the database (and redis when configured), brings the
// schema up to date and wires the services.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init: %w", err)
	}

	dsn := cfg.DSN()
	if cfg.DB.Driver == "sqlite" {
		dsn = db.SQLiteDSN(dsn)
	}
	conn, err := utils.OpenDB(ctx, cfg.DB.Driver, dsn, utils.PoolConfig{})
	if err != nil {
		return nil, fmt.Errorf("%s init: %w", cfg.DB.Driver, err)
	}
	if err := db.Prepare(ctx, conn.DB, cfg.DB.Driver); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	a := &App{Config: cfg, Log: log, Store: sqlstore.New(conn), Auth: authManager}

	var cache stats.Cache
	var guard lifecycle.ImportGuard = lifecycle.NewLocalImportGuard()
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("redis init: %w", err)
		}
		a.Redis = rdb
		cache = stats.NewRedisCache(rdb, statsCacheTTL)
		guard = lifecycle.NewRedisImportGuard(rdb, cfg.Import.LockTTL)
	}

	a.Users = users.NewService(a.Store, users.NewHasher(cfg.Auth.BcryptCost))
	a.Stats = stats.NewService(a.Store, cache)
	a.Engine = lifecycle.NewEngine(a.Store, audit.NewService()).
		WithImportGuard(guard).
		WithInvalidator(a.Stats)

	log.Info("app ready", "driver", cfg.DB.Driver, "redis", a.Redis != nil)
	return a, nil
}

// SeedAdmin creates the configured admin account when it does not exist yet.
// An empty SEED_ADMIN_PASSWORD skips seeding.
func (a *App) SeedAdmin(ctx context.Context) (users.User, bool, error) {
	s := a.Config.Seed
	if s.AdminPassword == "" {
		return users.User{}, false, nil
	}
	return a.Users.EnsureAdmin(ctx, s.AdminUsername, s.AdminEmail, s.AdminPassword)
}

func (a *App) Close() error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	return a.Store.Close()
}
