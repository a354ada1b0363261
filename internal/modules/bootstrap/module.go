package bootstrap

import (
	"context"

	"coincheck_bot/internal/config"
	"coincheck_bot/pkg/logger"
	"coincheck_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "coincheck_bot"

// NewLogger строит процессный логгер из конфига.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
}

// NewTracer installs the global tracer and flushes it on stop.
func NewTracer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (opentracing.Tracer, error) {
	tracing.SetServiceName(serviceName)
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		log.Info("tracing enabled", zap.String("host", cfg.Tracing.Host), zap.Int("port", cfg.Tracing.Port))
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			_ = log.Sync()
			return nil
		},
	})
	return tracer, nil
}

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			NewLogger,
			NewTracer,
		),
		// tracer must be global before the first span
		fx.Invoke(func(opentracing.Tracer) {}),
	)
}
