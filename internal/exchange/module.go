package exchange

import (
	"coincheck_bot/internal/config"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			func(cfg *config.Config) *Client {
				return NewClient(Config{
					BaseURL:         cfg.Coincheck.BaseURL,
					AccessKey:       cfg.Coincheck.AccessKey,
					SecretAccessKey: cfg.Coincheck.SecretAccessKey,
					APISleep:        cfg.APISleep(),
				})
			},
		),
	)
}
