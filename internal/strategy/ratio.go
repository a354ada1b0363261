package strategy

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
)

// RatioCross needs the short average to clear the long one by CrossRatio before
// it calls a cross: buy when short > long*r, sell when short*r < long.
type RatioCross struct {
	cfg     Config
	history History
}

func NewRatioCross(cfg Config, history History) *RatioCross {
	return &RatioCross{cfg: cfg, history: history}
}

func (r *RatioCross) Name() models.StrategyType { return models.StrategyRatio }

func (r *RatioCross) DetermineTradeSignal(ctx context.Context, in Input) (models.Signal, error) {
	d := models.Diagnostics{
		ShortWindow: models.Int(r.cfg.ShortWindow),
		LongWindow:  models.Int(r.cfg.LongWindow),
	}

	avg, err := movingAverages(ctx, r.history, in.Pair, r.cfg.ShortWindow, r.cfg.LongWindow)
	if err != nil {
		return models.Signal{}, err
	}
	if !avg.ok {
		d.Reason = "insufficient price history"
		return models.NewInsufficientData(in.Pair, d), nil
	}

	threshold, err := r.history.SpreadThreshold(ctx, in.Pair)
	if err != nil {
		return models.Signal{}, err
	}
	if !checkSpread(in, threshold, &d) {
		return models.NewHold(in.Pair, d), nil
	}

	k := r.cfg.CrossRatio
	switch {
	case avg.short > avg.long*k:
		return buy(in, d), nil
	case avg.short*k < avg.long:
		return sell(r.cfg, in, d), nil
	default:
		d.Reason = fmt.Sprintf("inside cross band: short=%g long=%g ratio=%g", avg.short, avg.long, k)
		return models.NewHold(in.Pair, d), nil
	}
}
