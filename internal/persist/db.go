package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/pbellchambers/rustyhack-server-go/internal/config"
)

// DB wraps the optional Postgres leaderboard pool (§4.J). Connect is
// retried with exponential backoff via sethvargo/go-retry rather than
// failing boot outright, since the leaderboard is a supplemental sink —
// the primary JSON snapshot path never depends on it.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	var pool *pgxpool.Pool
	b := retry.WithMaxRetries(uint64(cfg.ConnectRetries), retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("connect to db: %w", err))
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			return retry.RetryableError(fmt.Errorf("ping db: %w", err))
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist: db unavailable after %d retries: %w", cfg.ConnectRetries, err)
	}

	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
