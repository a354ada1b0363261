package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"coincheck_bot/internal/runner"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Decide, size and submit orders for every held currency",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var r *runner.Runner
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			rep, err := r.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d orders, %d executed\n", rep.RunID, len(rep.Orders), rep.Succeeded)
			return nil
		}, tradingModules(), fx.Populate(&r))
	},
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Print what order would do without submitting anything",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var r *runner.Runner
		return runOnce(cmd.Context(), func(ctx context.Context) error {
			plan, err := r.Plan(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAIR\tTYPE\tCRYPTO\tJPY\tREASON")
			for _, in := range plan {
				fmt.Fprintf(w, "%s\t%s\t%g\t%.0f\t%s\n", in.Pair, in.Kind, in.CryptoAmount, in.JPYAmount, in.Reason)
			}
			return w.Flush()
		}, tradingModules(), fx.Populate(&r))
	},
}

func init() {
	rootCmd.AddCommand(orderCmd, decideCmd)
}
