package strategy

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
)

// Optimizer trades the crossover of the best backtested window pair and only
// when the live spread is inside the historical norm.
type Optimizer struct {
	cfg      Config
	selector *Selector
	history  History
}

func NewOptimizer(cfg Config, windows WindowSource, history History) *Optimizer {
	return &Optimizer{
		cfg:      cfg,
		selector: NewSelector(windows, cfg.MinWinRate),
		history:  history,
	}
}

func (o *Optimizer) Name() models.StrategyType { return models.StrategyOptimizer }

func (o *Optimizer) DetermineTradeSignal(ctx context.Context, in Input) (models.Signal, error) {
	sel, err := o.selector.Select(ctx, in.Pair)
	if err != nil {
		return models.Signal{}, err
	}
	if !sel.Found {
		return models.NewHold(in.Pair, models.Diagnostics{Reason: "no optimized window pair"}), nil
	}

	w := sel.Window
	d := models.Diagnostics{
		ShortWindow: models.Int(w.ShortWindow),
		LongWindow:  models.Int(w.LongWindow),
		WinRate:     models.Float(w.WinRatePct),
	}
	if !sel.Trusted {
		d.Reason = fmt.Sprintf("win rate below threshold: %.2f%% < %.2f%%", w.WinRatePct, o.cfg.MinWinRate)
		return models.NewHold(in.Pair, d), nil
	}

	avg, err := movingAverages(ctx, o.history, in.Pair, w.ShortWindow, w.LongWindow)
	if err != nil {
		return models.Signal{}, err
	}
	if !avg.ok {
		d.Reason = "insufficient price history"
		return models.NewInsufficientData(in.Pair, d), nil
	}

	threshold, err := o.history.SpreadThreshold(ctx, in.Pair)
	if err != nil {
		return models.Signal{}, err
	}
	if !checkSpread(in, threshold, &d) {
		return models.NewHold(in.Pair, d), nil
	}

	switch {
	case avg.short > avg.long:
		return buy(in, d), nil
	case avg.short < avg.long:
		return sell(o.cfg, in, d), nil
	default:
		return equal(in, avg, d), nil
	}
}
