package notify

import (
	"context"

	"coincheck_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram — пассивный нотифайер в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return NewTelegramWithBot(b, chatID), nil
}

func NewTelegramWithBot(bot *tgbot.BotAPI, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

func (t *Telegram) Send(msg string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	_, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg))
	return err
}

func (t *Telegram) NotifyOrder(_ context.Context, o models.Order) error {
	return t.Send(FormatOrder(o))
}

func (t *Telegram) NotifySummary(_ context.Context, title string, s models.Summary) error {
	return t.Send(FormatSummary(title, s))
}
