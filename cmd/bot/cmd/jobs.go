package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"coincheck_bot/internal/collector"
	"coincheck_bot/internal/exchange"
	"coincheck_bot/internal/ledger"
	"coincheck_bot/internal/modules/postgres"
	"coincheck_bot/internal/optimizer"
	"coincheck_bot/internal/repository"
	"coincheck_bot/internal/runner"
	"coincheck_bot/pkg/db"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var fetchTickersCmd = &cobra.Command{
	Use:   "fetch-tickers",
	Short: "Store the current ticker of every held currency",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var c *collector.Collector
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			n, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d tickers\n", n)
			return nil
		}, postgres.Module(), exchange.Module(), collector.Module(), fx.Populate(&c))
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Backtest moving-average windows for every pair with history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var o *optimizer.Optimizer
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			stored, err := o.Run(ctx)
			if err != nil {
				return err
			}
			pairs := make([]string, 0, len(stored))
			for p := range stored {
				pairs = append(pairs, p)
			}
			sort.Strings(pairs)
			for _, p := range pairs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d window pairs\n", p, stored[p])
			}
			return nil
		}, postgres.Module(), optimizer.Module(), fx.Populate(&o))
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Value current holdings, store and send a portfolio summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var rep *runner.Reporter
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			s, err := rep.Report(ctx, "Daily summary")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total %.0f JPY, invested %.0f JPY, P/L %.0f JPY\n", s.TotalJPYValue, s.TotalInvested, s.PL)
			return nil
		}, tradingModules(), fx.Populate(&rep))
	},
}

var importFile string

var importCmd = &cobra.Command{
	Use:   "import-transactions",
	Short: "Import a Coincheck trade history CSV into the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return errors.Wrap(err, "open export")
		}
		defer f.Close()

		var im *ledger.Importer
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			res, err := im.Import(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, duplicates %d, skipped %d\n", res.Inserted, res.Duplicates, res.Skipped)
			return nil
		}, postgres.Module(), ledger.Module(), fx.Populate(&im))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var txm db.TxManager
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			return repository.Migrate(ctx, txm.Conn())
		}, postgres.Module(), fx.Populate(&txm))
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "transactions.csv", "path to the Coincheck CSV export")
	rootCmd.AddCommand(fetchTickersCmd, optimizeCmd, summaryCmd, importCmd, migrateCmd)
}
