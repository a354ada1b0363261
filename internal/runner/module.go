package runner

import (
	"coincheck_bot/internal/allocation"
	"coincheck_bot/internal/config"
	"coincheck_bot/internal/exchange"
	"coincheck_bot/internal/notify"
	"coincheck_bot/internal/repository"
	"coincheck_bot/internal/strategy"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(cfg *config.Config) *allocation.Allocator {
				return allocation.New(allocation.ConfigFrom(cfg))
			},
			func(ex *exchange.Client, s *repository.Summaries, t *repository.Transactions, n notify.Notifier, log *zap.Logger) *Reporter {
				return NewReporter(ex, s, t, n, log.Named("reporter"))
			},
			func(
				ex *exchange.Client,
				stg strategy.Strategy,
				alloc *allocation.Allocator,
				orders *repository.Orders,
				reporter *Reporter,
				n notify.Notifier,
				log *zap.Logger,
			) *Runner {
				return New(ex, stg, alloc, orders, reporter, n, log.Named("runner"))
			},
		),
	)
}
