package config

import (
	"coincheck_bot/internal/config"

	"go.uber.org/fx"
)

// Module provides *config.Config loaded from .env, configs/config.yaml and the environment.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			config.Load,
		),
	)
}
