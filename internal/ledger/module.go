package ledger

import (
	"coincheck_bot/internal/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(txs *repository.Transactions, log *zap.Logger) *Importer {
				return NewImporter(txs, log.Named("ledger"))
			},
		),
	)
}
