package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Querier is the pool subset the repositories need; *pgxpool.Pool satisfies
// it and tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open creates a pgx pool and verifies connectivity.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "listing-tracker"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		pool.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS listings (
	id                uuid PRIMARY KEY,
	display_id        text NOT NULL,
	url               text NOT NULL,
	created_at        text NOT NULL,
	price             text,
	price_value       double precision NOT NULL DEFAULT 0,
	address           text,
	region            text,
	beds              text,
	baths             text,
	sqft              text,
	sqft_lot          bigint,
	year_built        text,
	days_on_market    text,
	armls             text,
	description       text,
	images            jsonb NOT NULL DEFAULT '[]',
	price_trend       text,
	price_drop_amount text,
	original_price    text,
	reviewed          boolean NOT NULL DEFAULT false,
	last_updated      bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_status (
	id             uuid PRIMARY KEY,
	total          integer NOT NULL,
	completed      integer NOT NULL,
	failed         integer NOT NULL,
	current_status text NOT NULL DEFAULT '',
	items          jsonb NOT NULL,
	created_at     timestamptz NOT NULL,
	expire_at      timestamptz NOT NULL
);
`

// Migrate applies the schema. Idempotent; store-side GC of expired
// batch_status rows is expected but not enforced here.
func Migrate(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schemaDDL)
	return err
}
