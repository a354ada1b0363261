package strategy

import (
	"context"

	"coincheck_bot/internal/models"
)

// Basic trades the crossover of fixed windows against a fixed spread threshold.
type Basic struct {
	cfg     Config
	history History
}

func NewBasic(cfg Config, history History) *Basic {
	return &Basic{cfg: cfg, history: history}
}

func (b *Basic) Name() models.StrategyType { return models.StrategyBasic }

func (b *Basic) DetermineTradeSignal(ctx context.Context, in Input) (models.Signal, error) {
	d := models.Diagnostics{
		ShortWindow: models.Int(b.cfg.ShortWindow),
		LongWindow:  models.Int(b.cfg.LongWindow),
	}

	avg, err := movingAverages(ctx, b.history, in.Pair, b.cfg.ShortWindow, b.cfg.LongWindow)
	if err != nil {
		return models.Signal{}, err
	}
	if !avg.ok {
		d.Reason = "insufficient price history"
		return models.NewInsufficientData(in.Pair, d), nil
	}
	if !checkSpread(in, b.cfg.SpreadThreshold, &d) {
		return models.NewHold(in.Pair, d), nil
	}

	switch {
	case avg.short > avg.long:
		return buy(in, d), nil
	case avg.short < avg.long:
		return sell(b.cfg, in, d), nil
	default:
		return equal(in, avg, d), nil
	}
}
