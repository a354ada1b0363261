package optimizer

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"

	"go.uber.org/zap"
)

type PairSource interface {
	Pairs(ctx context.Context) ([]string, error)
}

type WindowStore interface {
	Backtest(ctx context.Context, pair string, short, long, offsetMinutes int) (models.OptimizedWindow, error)
	ReplaceForPair(ctx context.Context, pair string, rows []models.OptimizedWindow) error
}

// Grid bounds the searched window pairs: short in [ShortMin, ShortMax],
// long in [short+LongGap, LongMax].
type Grid struct {
	ShortMin      int
	ShortMax      int
	LongGap       int
	LongMax       int
	OffsetMinutes int
}

var DefaultGrid = Grid{ShortMin: 5, ShortMax: 10, LongGap: 5, LongMax: 30, OffsetMinutes: 15}

// Candidates enumerates every (short, long) pair of the grid.
func (g Grid) Candidates() [][2]int {
	var out [][2]int
	for short := g.ShortMin; short <= g.ShortMax; short++ {
		if short <= 0 {
			continue
		}
		for long := short + g.LongGap; long <= g.LongMax; long++ {
			if long <= short {
				continue
			}
			out = append(out, [2]int{short, long})
		}
	}
	return out
}

type Optimizer struct {
	pairs   PairSource
	windows WindowStore
	grid    Grid
	log     *zap.Logger
}

func New(pairs PairSource, windows WindowStore, grid Grid, log *zap.Logger) *Optimizer {
	return &Optimizer{pairs: pairs, windows: windows, grid: grid, log: log}
}

// Run backtests the grid for every pair with history. Pairs where no window
// pair crossed keep their previous rows.
func (o *Optimizer) Run(ctx context.Context) (map[string]int, error) {
	pairs, err := o.pairs.Pairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}

	stored := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		rows, err := o.optimizePair(ctx, pair)
		if err != nil {
			return stored, err
		}
		stored[pair] = len(rows)
	}
	return stored, nil
}

func (o *Optimizer) optimizePair(ctx context.Context, pair string) ([]models.OptimizedWindow, error) {
	log := o.log.With(zap.String("pair", pair))

	var (
		rows []models.OptimizedWindow
		best models.OptimizedWindow
	)
	for _, c := range o.grid.Candidates() {
		w, err := o.windows.Backtest(ctx, pair, c[0], c[1], o.grid.OffsetMinutes)
		if err != nil {
			return nil, err
		}
		if w.Total == 0 {
			continue
		}
		w.Pair = pair
		rows = append(rows, w)
		if w.WinRatePct > best.WinRatePct {
			best = w
		}
	}

	if len(rows) == 0 {
		log.Info("no crossovers in history, keeping previous windows")
		return nil, nil
	}
	if err := o.windows.ReplaceForPair(ctx, pair, rows); err != nil {
		return nil, err
	}
	log.Info("windows optimized",
		zap.Int("rows", len(rows)),
		zap.Int("best_short", best.ShortWindow),
		zap.Int("best_long", best.LongWindow),
		zap.Float64("best_win_rate", best.WinRatePct),
	)
	return rows, nil
}
