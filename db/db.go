package db

import (
	"context"
	"fmt"
	"time"

	"lunch-menu/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

const connectAttempts = 5

// Init opens the pool and waits for the database to answer a ping,
// retrying with a growing delay while it starts up.
func Init(ctx context.Context, cfg config.DBConfig) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	for i := 0; i < connectAttempts; i++ {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				Pool = pool
				return nil
			}
			pool.Close()
		}
		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 2 * time.Second):
			}
		}
	}
	return fmt.Errorf("connect to database after %d attempts: %w", connectAttempts, err)
}

func Ping(ctx context.Context) error {
	if Pool == nil {
		return fmt.Errorf("database pool not initialised")
	}
	return Pool.Ping(ctx)
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
