package strategy

import (
	"fmt"

	"coincheck_bot/internal/config"
	"coincheck_bot/internal/models"
)

// ConfigFrom maps the application config onto the strategy config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:            models.StrategyType(cfg.Strategy),
		SellRatio:       cfg.SellRatio,
		MinSellAmount:   cfg.MinSellAmount,
		MinSellAmounts:  cfg.MinSellAmounts,
		MinWinRate:      cfg.MABorderThresholdRatio,
		ShortWindow:     cfg.MAShort,
		LongWindow:      cfg.MALong,
		SpreadThreshold: cfg.SpreadThreshold,
		CrossRatio:      cfg.MACrossRatio,
	}
}

func New(cfg Config, windows WindowSource, history History) (Strategy, error) {
	switch cfg.Type {
	case models.StrategyOptimizer, "":
		return NewOptimizer(cfg, windows, history), nil
	case models.StrategyBasic:
		return NewBasic(cfg, history), nil
	case models.StrategyRatio:
		return NewRatioCross(cfg, history), nil
	default:
		return nil, fmt.Errorf("strategy: unknown type %q", cfg.Type)
	}
}
