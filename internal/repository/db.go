package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id               TEXT PRIMARY KEY,
			gross_amount     NUMERIC(16,2) NOT NULL,
			state            TEXT NOT NULL DEFAULT 'pending',
			gateway_status   TEXT,
			fraud_status     TEXT,
			last_notified_at TIMESTAMPTZ,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_state ON orders(state);

		CREATE TABLE IF NOT EXISTS payment_events (
			id             TEXT PRIMARY KEY,
			order_id       TEXT NOT NULL,
			gateway_status TEXT NOT NULL,
			fraud_status   TEXT,
			from_state     TEXT NOT NULL,
			to_state       TEXT NOT NULL,
			action         TEXT NOT NULL,
			applied        BOOLEAN NOT NULL,
			reason         TEXT,
			gross_amount   NUMERIC(16,2),
			refund_amount  NUMERIC(16,2),
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payment_events_order_id ON payment_events(order_id);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
