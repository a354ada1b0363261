package repository

import (
	"context"
	"fmt"

	"coincheck_bot/pkg/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tickers (
		id BIGSERIAL PRIMARY KEY,
		pair TEXT NOT NULL,
		last DOUBLE PRECISION NOT NULL,
		bid DOUBLE PRECISION NOT NULL,
		ask DOUBLE PRECISION NOT NULL,
		high DOUBLE PRECISION NOT NULL,
		low DOUBLE PRECISION NOT NULL,
		volume DOUBLE PRECISION NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tickers_pair_timestamp_idx ON tickers (pair, timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS optimized_mas (
		id BIGSERIAL PRIMARY KEY,
		pair TEXT NOT NULL,
		short_ma INTEGER NOT NULL,
		long_ma INTEGER NOT NULL,
		offset_minutes INTEGER NOT NULL,
		win_rate_pct DOUBLE PRECISION NOT NULL,
		total INTEGER NOT NULL,
		wins INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS optimized_mas_pair_idx ON optimized_mas (pair, win_rate_pct DESC)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		pair VARCHAR(255) NOT NULL,
		order_type VARCHAR(255) NOT NULL,
		crypto_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		jpy_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		buy_rate DOUBLE PRECISION,
		sell_rate DOUBLE PRECISION,
		spread_ratio DOUBLE PRECISION,
		spread_threshold DOUBLE PRECISION,
		ma_short INTEGER,
		ma_long INTEGER,
		ma_win_rate DOUBLE PRECISION,
		comment TEXT NOT NULL DEFAULT '',
		api_call_success_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS summaries (
		id BIGSERIAL PRIMARY KEY,
		total_invested DOUBLE PRECISION NOT NULL,
		total_jpy_value DOUBLE PRECISION NOT NULL,
		pl DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS summary_records (
		id BIGSERIAL PRIMARY KEY,
		summary_id BIGINT NOT NULL REFERENCES summaries (id) ON DELETE CASCADE,
		currency VARCHAR(255) NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		rate DOUBLE PRECISION NOT NULL,
		jpy_value DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		external_id VARCHAR(255) NOT NULL UNIQUE,
		order_type VARCHAR(255) NOT NULL,
		pair VARCHAR(255) NOT NULL,
		rate DOUBLE PRECISION NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		fee_currency VARCHAR(255) NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates missing tables and indexes. Safe to run repeatedly.
func Migrate(ctx context.Context, conn db.Transaction) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pg.Migrate: %w", err)
		}
	}
	return nil
}
