package scheduler

import (
	"context"

	"coincheck_bot/internal/collector"
	"coincheck_bot/internal/config"
	"coincheck_bot/internal/modules/health/service"
	"coincheck_bot/internal/optimizer"
	"coincheck_bot/internal/runner"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Jobs maps the configured cron specs onto the bot's periodic tasks.
func Jobs(cfg *config.Config, r *runner.Runner, c *collector.Collector, o *optimizer.Optimizer) []Job {
	return []Job{
		{Name: "fetch-tickers", Spec: cfg.Schedule.TickerCron, Run: func(ctx context.Context) error {
			_, err := c.Collect(ctx)
			return err
		}},
		{Name: "order", Spec: cfg.Schedule.OrderCron, Run: func(ctx context.Context) error {
			_, err := r.Run(ctx)
			return err
		}},
		{Name: "optimize", Spec: cfg.Schedule.OptimizeCron, Run: func(ctx context.Context) error {
			_, err := o.Run(ctx)
			return err
		}},
	}
}

func Module() fx.Option {
	return fx.Module("scheduler",
		fx.Provide(
			func(state *service.State, log *zap.Logger) *Scheduler {
				return New(state, log.Named("scheduler"))
			},
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			s *Scheduler,
			state *service.State,
			r *runner.Runner,
			c *collector.Collector,
			o *optimizer.Optimizer,
		) error {
			if err := s.Register(Jobs(cfg, r, c, o)...); err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					s.Start()
					state.SetReady(true)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					state.SetReady(false)
					return s.Stop(ctx)
				},
			})
			return nil
		}),
	)
}
