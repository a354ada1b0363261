package cmd

import (
	"context"

	"coincheck_bot/internal/exchange"
	"coincheck_bot/internal/modules/bootstrap"
	modconfig "coincheck_bot/internal/modules/config"
	"coincheck_bot/internal/modules/postgres"
	"coincheck_bot/internal/notify"
	"coincheck_bot/internal/runner"
	"coincheck_bot/internal/strategy"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newApp(opts ...fx.Option) *fx.App {
	return fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
		modconfig.Module(),
		bootstrap.Module(),
		fx.Options(opts...),
	)
}

// tradingModules is everything a trading run needs.
func tradingModules() fx.Option {
	return fx.Options(
		postgres.Module(),
		exchange.Module(),
		notify.Module(),
		strategy.Module(),
		runner.Module(),
	)
}

// runOnce starts the app, calls fn and stops the app again. Values fn needs are
// pulled out of the graph with fx.Populate in opts.
func runOnce(ctx context.Context, fn func(ctx context.Context) error, opts ...fx.Option) (err error) {
	app := newApp(opts...)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build app")
	}
	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "start app")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = errors.Wrap(stopErr, "stop app")
		}
	}()
	return fn(ctx)
}
