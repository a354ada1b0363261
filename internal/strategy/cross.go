package strategy

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
)

type averages struct {
	short, long float64
	ok          bool
}

func movingAverages(ctx context.Context, h History, pair string, short, long int) (averages, error) {
	s, okS, err := h.MovingAverage(ctx, pair, short)
	if err != nil {
		return averages{}, err
	}
	l, okL, err := h.MovingAverage(ctx, pair, long)
	if err != nil {
		return averages{}, err
	}
	return averages{short: s, long: l, ok: okS && okL}, nil
}

// checkSpread fills the spread diagnostics and reports whether the live spread
// is acceptable.
func checkSpread(in Input, threshold float64, d *models.Diagnostics) bool {
	d.SpreadThreshold = models.Float(threshold)
	if in.Bid <= 0 {
		d.Reason = "no bid"
		return false
	}
	ratio := in.SpreadRatio()
	d.SpreadRatio = models.Float(ratio)
	if ratio > threshold {
		d.Reason = fmt.Sprintf("spread unfavorable: %.4f%% > %.4f%%", ratio, threshold)
		return false
	}
	return true
}

// sell sizes a dead-cross sell and falls back to hold below the minimum order size.
func sell(cfg Config, in Input, d models.Diagnostics) models.Signal {
	amount := in.CryptoBalance * cfg.SellRatio
	currency := models.CurrencyOf(in.Pair)
	if floor := cfg.minSellFor(in.Pair); amount < floor {
		d.Reason = fmt.Sprintf("below minimum sell size: %g %s < %g", amount, currency, floor)
		return models.NewHold(in.Pair, d)
	}
	d.Reason = fmt.Sprintf("dead cross: sell %g %s", amount, currency)
	return models.NewMarketSell(in.Pair, amount, d)
}

// buy is a golden-cross buy. The JPY amount is left to the allocator.
func buy(in Input, d models.Diagnostics) models.Signal {
	d.Reason = fmt.Sprintf("golden cross: buy %s with allocated jpy", models.CurrencyOf(in.Pair))
	return models.NewMarketBuy(in.Pair, d)
}

func equal(in Input, avg averages, d models.Diagnostics) models.Signal {
	d.Reason = fmt.Sprintf("moving averages equal: short=%g long=%g", avg.short, avg.long)
	return models.NewHold(in.Pair, d)
}
