package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"coincheck_bot/internal/config"
	"coincheck_bot/internal/exchange"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print account balances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var c *exchange.Client
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			b, err := c.Balances(ctx)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(b))
			for k, v := range b {
				if v != 0 {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%g\n", k, b[k])
			}
			fmt.Fprintf(w, "trading\t%v\n", b.TradingCurrencies())
			return w.Flush()
		}, exchange.Module(), fx.Populate(&c))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out, err := cfg.Render()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd, configCmd)
}
