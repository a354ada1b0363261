package strategy

import (
	"context"

	"coincheck_bot/internal/models"
)

// Input is the live market state of one currency at decision time.
type Input struct {
	Pair          string
	Bid           float64
	Ask           float64
	CryptoBalance float64
}

// SpreadRatio returns ((ask-bid)/bid)*100 of the live quote.
func (in Input) SpreadRatio() float64 {
	return (in.Ask - in.Bid) / in.Bid * 100
}

// Strategy turns market state into an unsized signal. Storage failures come back
// as errors; everything else is expressed as a signal.
type Strategy interface {
	Name() models.StrategyType
	DetermineTradeSignal(ctx context.Context, in Input) (models.Signal, error)
}

// History answers price history questions for a pair.
type History interface {
	MovingAverage(ctx context.Context, pair string, window int) (float64, bool, error)
	SpreadThreshold(ctx context.Context, pair string) (float64, error)
}

// WindowSource returns the best backtested window pair of a pair.
type WindowSource interface {
	BestForPair(ctx context.Context, pair string) (models.OptimizedWindow, bool, error)
}

// Config is everything a strategy needs to know about the outside world.
type Config struct {
	Type models.StrategyType

	SellRatio      float64
	MinSellAmount  float64
	MinSellAmounts map[string]float64

	// optimizer
	MinWinRate float64

	// basic, ratio
	ShortWindow int
	LongWindow  int

	// basic
	SpreadThreshold float64

	// ratio
	CrossRatio float64
}

func (c Config) minSellFor(pair string) float64 {
	if v, ok := c.MinSellAmounts[models.CurrencyOf(pair)]; ok && v > 0 {
		return v
	}
	return c.MinSellAmount
}
