package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Coincheck spot trading bot",
	Long: `bot trades JPY spot pairs on Coincheck with moving-average cross strategies.

Configuration is read from .env, configs/config.yaml (override with CONFIG_FILE)
and the environment. Run "bot serve" to schedule ticker collection, trading and
window optimization, or call the individual commands from an external scheduler.`,
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
