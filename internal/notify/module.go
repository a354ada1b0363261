package notify

import (
	"coincheck_bot/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New picks notifiers by configured credentials and falls back to the log.
func New(cfg *config.Config, log *zap.Logger) (Notifier, error) {
	var out Multi
	if cfg.Slack.WebhookURL != "" {
		out = append(out, NewSlack(cfg.Slack.WebhookURL))
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		out = append(out, tg)
	}
	if len(out) == 0 {
		return NewStdout(log), nil
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(New),
	)
}
