package postgres

import (
	"context"
	"fmt"

	"coincheck_bot/internal/config"
	"coincheck_bot/internal/repository"
	"coincheck_bot/pkg/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// Module поднимает пул, менеджер транзакций и репозитории.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
				ctx := context.Background()
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN:      cfg.Database.DSN,
					MaxConns: cfg.Database.MaxConns,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					poolMaster.Close()
					return nil, fmt.Errorf("ping postgres: %w", err)
				}

				lc.Append(fx.StopHook(poolMaster.Close))
				return poolMaster, nil
			},
			db.NewPgTxManager,
			func(m *db.PgTxManager) db.TxManager { return m },
			repository.NewTickers,
			repository.NewOptimizedWindows,
			repository.NewOrders,
			repository.NewSummaries,
			repository.NewTransactions,
		),
	)
}
