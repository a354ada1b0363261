package strategy

import (
	"coincheck_bot/internal/config"
	"coincheck_bot/internal/repository"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			func(cfg *config.Config, windows *repository.OptimizedWindows, tickers *repository.Tickers) (Strategy, error) {
				return New(ConfigFrom(cfg), windows, tickers)
			},
		),
	)
}
