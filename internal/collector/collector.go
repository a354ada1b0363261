package collector

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"

	"go.uber.org/zap"
)

type Market interface {
	Balances(ctx context.Context) (models.Balances, error)
	Ticker(ctx context.Context, pair string) (models.Ticker, error)
}

type TickerStore interface {
	Create(ctx context.Context, tick models.Ticker) error
	PurgeOldest(ctx context.Context, maxRows int, ratio float64) (int64, error)
}

type Retention struct {
	MaxRows    int
	PurgeRatio float64
}

// Collector snapshots the ticker of every held currency into price history.
type Collector struct {
	market    Market
	store     TickerStore
	retention Retention
	log       *zap.Logger
}

func New(market Market, store TickerStore, retention Retention, log *zap.Logger) *Collector {
	return &Collector{market: market, store: store, retention: retention, log: log}
}

// Collect returns how many ticks were stored. A pair whose ticker cannot be
// fetched is skipped; a failed write aborts.
func (c *Collector) Collect(ctx context.Context) (stored int, err error) {
	balances, err := c.market.Balances(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch balances: %w", err)
	}

	for _, currency := range balances.TradingCurrencies() {
		pair := models.PairFor(currency)
		tick, err := c.market.Ticker(ctx, pair)
		if err != nil {
			c.log.Warn("ticker skipped", zap.String("pair", pair), zap.Error(err))
			continue
		}
		tick.Pair = pair
		if err := c.store.Create(ctx, tick); err != nil {
			return stored, fmt.Errorf("%s: store ticker: %w", pair, err)
		}
		stored++
	}

	if c.retention.MaxRows > 0 {
		deleted, err := c.store.PurgeOldest(ctx, c.retention.MaxRows, c.retention.PurgeRatio)
		if err != nil {
			return stored, err
		}
		if deleted > 0 {
			c.log.Info("old ticks purged", zap.Int64("deleted", deleted))
		}
	}

	c.log.Info("tickers collected", zap.Int("stored", stored))
	return stored, nil
}
