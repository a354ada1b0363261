package collector

import (
	"coincheck_bot/internal/config"
	"coincheck_bot/internal/exchange"
	"coincheck_bot/internal/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("collector",
		fx.Provide(
			func(cfg *config.Config, ex *exchange.Client, tickers *repository.Tickers, log *zap.Logger) *Collector {
				return New(ex, tickers, Retention{
					MaxRows:    cfg.Retention.MaxRows,
					PurgeRatio: cfg.Retention.PurgeRatio,
				}, log.Named("collector"))
			},
		),
	)
}
