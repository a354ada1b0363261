package allocation

import (
	"sort"

	"coincheck_bot/internal/config"
	"coincheck_bot/internal/models"
)

// Tier applies Ratio when the JPY balance is strictly below Threshold.
type Tier struct {
	Threshold float64
	Ratio     float64
}

type Config struct {
	// Tiers are checked in order, the first match wins.
	Tiers        []Tier
	DefaultRatio float64
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Tiers: []Tier{
			{Threshold: cfg.BuyThreshold1, Ratio: cfg.BuyRatio1},
			{Threshold: cfg.BuyThreshold2, Ratio: cfg.BuyRatio2},
			{Threshold: cfg.BuyThreshold3, Ratio: cfg.BuyRatio3},
		},
		DefaultRatio: cfg.BuyRatioDefault,
	}
}

// Allocator sizes signals against the available JPY balance.
type Allocator struct {
	cfg Config
}

func New(cfg Config) *Allocator {
	return &Allocator{cfg: cfg}
}

// BuyRatio returns the share of the JPY balance to spend on buys this run.
func (a *Allocator) BuyRatio(jpyBalance float64) float64 {
	for _, t := range a.cfg.Tiers {
		if jpyBalance < t.Threshold {
			return t.Ratio
		}
	}
	return a.cfg.DefaultRatio
}

// Allocate splits jpyBalance*BuyRatio evenly across buy signals and orders the
// result sells first, keeping the input order otherwise. Sells keep the amount
// their strategy decided; hold and insufficient_data pass through unsized.
func (a *Allocator) Allocate(signals []models.Signal, jpyBalance float64) []models.Instruction {
	buys := 0
	for _, s := range signals {
		if s.Kind == models.MarketBuy {
			buys++
		}
	}

	perCurrency := 0.0
	if buys > 0 {
		perCurrency = jpyBalance * a.BuyRatio(jpyBalance) / float64(buys)
	}

	out := make([]models.Instruction, 0, len(signals))
	for _, s := range signals {
		in := models.Instruction{Signal: s}
		switch s.Kind {
		case models.MarketBuy:
			in.JPYAmount = perCurrency
		case models.MarketSell:
			in.CryptoAmount = s.Amount
		}
		out = append(out, in)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i].Kind) < priority(out[j].Kind)
	})
	return out
}

func priority(t models.OrderType) int {
	if t == models.MarketSell {
		return 0
	}
	return 1
}
