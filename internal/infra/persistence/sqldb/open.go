package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"example.com/product-catalog/internal/config"
)

// Open connects to the configured database and waits, with exponential
// backoff bounded by cfg.ConnectTimeout, until it answers a ping.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Session, error) {
	dialect, err := ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	isolation, err := ParseIsolation(cfg.Isolation)
	if err != nil {
		return nil, err
	}

	db, err := openDB(dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	ping := func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return struct{}{}, db.PingContext(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		logger.WarnContext(ctx, "Database not ready, retrying",
			slog.String("dialect", string(dialect)),
			slog.Duration("retry_in", next),
			slog.String("error", err.Error()),
		)
	}
	if _, err := backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout),
		backoff.WithNotify(notify),
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", dialect, err)
	}

	logger.InfoContext(ctx, "Database connected", slog.String("dialect", string(dialect)))
	return NewSession(db, dialect, isolation), nil
}

func openDB(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case MySQL:
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mc.ParseTime = true
		mc.Loc = time.UTC
		connector, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	case Postgres:
		pc, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return stdlib.OpenDB(*pc), nil
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}
