package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"coincheck_bot/internal/models"
	"coincheck_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

// MinEligibleWinRate is the storage-level floor for window pairs handed to strategies.
const MinEligibleWinRate = 50.0

// OptimizedWindows keeps backtested short/long window pairs per trading pair.
type OptimizedWindows struct {
	db db.TxManager
}

func NewOptimizedWindows(db db.TxManager) *OptimizedWindows {
	return &OptimizedWindows{db: db}
}

// BestForPair returns the eligible window pair with the highest win rate.
// found is false when nothing reaches MinEligibleWinRate.
func (o *OptimizedWindows) BestForPair(ctx context.Context, pair string) (w models.OptimizedWindow, found bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.BestForPair(%s): %w", pair, err)
		}
	}()
	err = o.db.Conn().QueryRow(ctx,
		`SELECT id, pair, short_ma, long_ma, offset_minutes, win_rate_pct, total, wins, created_at
		 FROM optimized_mas
		 WHERE pair = $1 AND win_rate_pct >= $2
		 ORDER BY win_rate_pct DESC, total DESC, id DESC
		 LIMIT 1`,
		pair, MinEligibleWinRate,
	).Scan(&w.ID, &w.Pair, &w.ShortWindow, &w.LongWindow, &w.OffsetMinutes, &w.WinRatePct, &w.Total, &w.Wins, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OptimizedWindow{}, false, nil
	}
	if err != nil {
		return models.OptimizedWindow{}, false, err
	}
	return w, true, nil
}

// Backtest replays the stored ticks of pair and counts MA crossovers for the given
// windows. A golden cross wins when the first price at least offset minutes later
// is higher than the price at the cross, a dead cross when it is lower.
func (o *OptimizedWindows) Backtest(ctx context.Context, pair string, short, long, offsetMinutes int) (w models.OptimizedWindow, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Backtest(%s, %d, %d): %w", pair, short, long, err)
		}
	}()
	var total, wins int64
	err = o.db.Conn().QueryRow(ctx, backtestSQL, pair, short, long, offsetMinutes).Scan(&total, &wins)
	if err != nil {
		return models.OptimizedWindow{}, err
	}

	w = models.OptimizedWindow{
		Pair:          pair,
		ShortWindow:   short,
		LongWindow:    long,
		OffsetMinutes: offsetMinutes,
		Total:         int(total),
		Wins:          int(wins),
	}
	if total > 0 {
		w.WinRatePct = math.Round(float64(wins)*10000/float64(total)) / 100
	}
	return w, nil
}

// ReplaceForPair swaps all stored rows of pair for rows in one transaction.
func (o *OptimizedWindows) ReplaceForPair(ctx context.Context, pair string, rows []models.OptimizedWindow) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.ReplaceForPair(%s): %w", pair, err)
		}
	}()
	return o.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctxTx, `DELETE FROM optimized_mas WHERE pair = $1`, pair); err != nil {
			return err
		}
		for _, r := range rows {
			_, err := tx.Exec(ctxTx,
				`INSERT INTO optimized_mas (pair, short_ma, long_ma, offset_minutes, win_rate_pct, total, wins)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				pair, r.ShortWindow, r.LongWindow, r.OffsetMinutes, r.WinRatePct, r.Total, r.Wins,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Create in db
func (o *OptimizedWindows) Create(ctx context.Context, w models.OptimizedWindow) (err error) {
	_, err = o.db.Conn().Exec(ctx,
		`INSERT INTO optimized_mas (pair, short_ma, long_ma, offset_minutes, win_rate_pct, total, wins)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.Pair, w.ShortWindow, w.LongWindow, w.OffsetMinutes, w.WinRatePct, w.Total, w.Wins,
	)
	if err != nil {
		return fmt.Errorf("pg.CreateOptimizedWindow: %w", err)
	}
	return nil
}

const backtestSQL = `
WITH base AS (
	SELECT timestamp, last, ROW_NUMBER() OVER (ORDER BY timestamp, id) AS rn
	FROM tickers
	WHERE pair = $1
),
sma AS (
	SELECT
		b1.timestamp,
		b1.last,
		(SELECT AVG(b2.last) FROM base b2 WHERE b2.rn BETWEEN b1.rn - ($2::int - 1) AND b1.rn) AS sma_short,
		(SELECT AVG(b3.last) FROM base b3 WHERE b3.rn BETWEEN b1.rn - ($3::int - 1) AND b1.rn) AS sma_long
	FROM base b1
	WHERE b1.rn >= $3::int
),
diffs AS (
	SELECT timestamp, last,
		sma_short - sma_long AS diff,
		LAG(sma_short - sma_long) OVER (ORDER BY timestamp) AS prev_diff
	FROM sma
),
crosses AS (
	SELECT timestamp AS cross_time, last AS cross_last, 'GC' AS cross_type
	FROM diffs WHERE prev_diff < 0 AND diff >= 0
	UNION ALL
	SELECT timestamp, last, 'DC'
	FROM diffs WHERE prev_diff > 0 AND diff <= 0
),
results AS (
	SELECT
		CASE
			WHEN c.cross_type = 'GC' AND after.last > c.cross_last THEN true
			WHEN c.cross_type = 'DC' AND after.last < c.cross_last THEN true
			ELSE false
		END AS is_win
	FROM crosses c
	JOIN LATERAL (
		SELECT b.last FROM base b
		WHERE b.timestamp >= c.cross_time + make_interval(mins => $4::int)
		ORDER BY b.timestamp, b.rn
		LIMIT 1
	) AS after ON true
)
SELECT COUNT(*), COUNT(*) FILTER (WHERE is_win) FROM results`
