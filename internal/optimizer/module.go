package optimizer

import (
	"coincheck_bot/internal/config"
	"coincheck_bot/internal/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func GridFrom(cfg *config.Config) Grid {
	return Grid{
		ShortMin:      cfg.Optimizer.ShortMin,
		ShortMax:      cfg.Optimizer.ShortMax,
		LongGap:       cfg.Optimizer.LongGap,
		LongMax:       cfg.Optimizer.LongMax,
		OffsetMinutes: cfg.Optimizer.OffsetMinutes,
	}
}

func Module() fx.Option {
	return fx.Module("optimizer",
		fx.Provide(
			func(cfg *config.Config, tickers *repository.Tickers, windows *repository.OptimizedWindows, log *zap.Logger) *Optimizer {
				return New(tickers, windows, GridFrom(cfg), log.Named("optimizer"))
			},
		),
	)
}
