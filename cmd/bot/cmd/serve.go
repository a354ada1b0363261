package cmd

import (
	"context"

	"coincheck_bot/internal/collector"
	"coincheck_bot/internal/modules/health"
	"coincheck_bot/internal/optimizer"
	"coincheck_bot/internal/repository"
	"coincheck_bot/internal/scheduler"
	"coincheck_bot/pkg/db"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled jobs and the health endpoints until stopped",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
			tradingModules(),
			collector.Module(),
			optimizer.Module(),
			// схема должна быть готова до первого запуска задач
			fx.Module("migrate", fx.Invoke(func(lc fx.Lifecycle, txm db.TxManager) {
				lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
					return repository.Migrate(ctx, txm.Conn())
				}})
			})),
			health.Module(),
			scheduler.Module(),
		)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
