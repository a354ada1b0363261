package strategy

import (
	"context"

	"coincheck_bot/internal/models"
)

// Selection is the outcome of picking a window pair for a currency.
type Selection struct {
	Window models.OptimizedWindow
	// Found is false when no eligible (>= 50% win rate) pair is stored.
	Found bool
	// Trusted is true when the pair's win rate reaches the configured minimum.
	Trusted bool
}

type Selector struct {
	windows    WindowSource
	minWinRate float64
}

func NewSelector(windows WindowSource, minWinRate float64) *Selector {
	return &Selector{windows: windows, minWinRate: minWinRate}
}

func (s *Selector) Select(ctx context.Context, pair string) (Selection, error) {
	w, found, err := s.windows.BestForPair(ctx, pair)
	if err != nil {
		return Selection{}, err
	}
	if !found {
		return Selection{}, nil
	}
	return Selection{
		Window:  w,
		Found:   true,
		Trusted: w.WinRatePct >= s.minWinRate,
	}, nil
}
