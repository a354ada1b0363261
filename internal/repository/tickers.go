package repository

import (
	"context"
	"fmt"
	"math"

	"coincheck_bot/internal/models"
	"coincheck_bot/pkg/db"
)

// Tickers stores price snapshots and answers the history questions strategies ask.
type Tickers struct {
	db db.TxManager
}

func NewTickers(db db.TxManager) *Tickers {
	return &Tickers{db: db}
}

// Create in db
func (t *Tickers) Create(ctx context.Context, tick models.Ticker) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateTicker: %w", err)
		}
	}()
	_, err = t.db.Conn().Exec(ctx,
		`INSERT INTO tickers (pair, last, bid, ask, high, low, volume, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tick.Pair, tick.Last, tick.Bid, tick.Ask, tick.High, tick.Low, tick.Volume, tick.Timestamp,
	)
	return err
}

// MovingAverage averages the last price of the newest window ticks of pair.
// ok is false when the pair has no ticks at all.
func (t *Tickers) MovingAverage(ctx context.Context, pair string, window int) (avg float64, ok bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.MovingAverage(%s, %d): %w", pair, window, err)
		}
	}()
	if window <= 0 {
		return 0, false, fmt.Errorf("window must be positive")
	}

	var v *float64
	err = t.db.Conn().QueryRow(ctx,
		`SELECT AVG(s.last)::float8
		 FROM (
			SELECT last FROM tickers
			WHERE pair = $1
			ORDER BY timestamp DESC, id DESC
			LIMIT $2
		 ) AS s`,
		pair, window,
	).Scan(&v)
	if err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}

// SpreadThreshold returns median + sample stddev of the historical spread ratio
// ((ask-bid)/bid*100) of pair. A missing stddev (fewer than two ticks) counts as 0,
// so does a missing median (no ticks).
func (t *Tickers) SpreadThreshold(ctx context.Context, pair string) (threshold float64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SpreadThreshold(%s): %w", pair, err)
		}
	}()
	err = t.db.Conn().QueryRow(ctx,
		`SELECT
			COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY s.ratio), 0)::float8
			+ COALESCE(stddev_samp(s.ratio), 0)::float8
		 FROM (
			SELECT ((ask - bid) / NULLIF(bid, 0)) * 100 AS ratio
			FROM tickers
			WHERE pair = $1
		 ) AS s
		 WHERE s.ratio IS NOT NULL`,
		pair,
	).Scan(&threshold)
	return threshold, err
}

// Pairs lists every pair that has stored ticks.
func (t *Tickers) Pairs(ctx context.Context) (pairs []string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.TickerPairs: %w", err)
		}
	}()
	rows, err := t.db.Conn().Query(ctx, `SELECT DISTINCT pair FROM tickers ORDER BY pair`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pair string
		if err := rows.Scan(&pair); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

func (t *Tickers) Count(ctx context.Context) (n int64, err error) {
	err = t.db.Conn().QueryRow(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pg.CountTickers: %w", err)
	}
	return n, nil
}

// PurgeOldest deletes ceil(total*ratio) oldest ticks once the table holds at least
// maxRows rows. Returns the number of deleted rows.
func (t *Tickers) PurgeOldest(ctx context.Context, maxRows int, ratio float64) (deleted int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.PurgeOldest: %w", err)
		}
	}()
	total, err := t.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total < int64(maxRows) || ratio <= 0 {
		return 0, nil
	}
	limit := int64(math.Ceil(float64(total) * ratio))

	tag, err := t.db.Conn().Exec(ctx,
		`DELETE FROM tickers
		 WHERE id IN (SELECT id FROM tickers ORDER BY timestamp ASC, id ASC LIMIT $1)`,
		limit,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
