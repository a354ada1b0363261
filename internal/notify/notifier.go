package notify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"coincheck_bot/internal/models"

	"go.uber.org/zap"
)

type Notifier interface {
	NotifyOrder(ctx context.Context, order models.Order) error
	NotifySummary(ctx context.Context, title string, summary models.Summary) error
}

// FormatOrder renders an executed order as plain text.
func FormatOrder(o models.Order) string {
	var b strings.Builder
	b.WriteString("🪙 Order executed\n")
	fmt.Fprintf(&b, "Pair: %s\n", o.Pair)
	fmt.Fprintf(&b, "Operation: %s\n", o.OrderType)
	fmt.Fprintf(&b, "Amount: %s", orderAmount(o))
	if o.BuyRate != nil && o.SellRate != nil {
		fmt.Fprintf(&b, "\nRate: buy %.0f / sell %.0f", *o.BuyRate, *o.SellRate)
	}
	return b.String()
}

func orderAmount(o models.Order) string {
	if o.OrderType == models.MarketBuy {
		return fmt.Sprintf("%.0f JPY", o.JPYAmount)
	}
	return num(o.CryptoAmount) + " " + models.CurrencyOf(o.Pair)
}

// FormatSummary renders a portfolio summary as plain text, JPY rounded to yen.
func FormatSummary(title string, s models.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 %s\n\n", title)
	fmt.Fprintf(&b, "Total invested: %s JPY\n", yen(s.TotalInvested))
	fmt.Fprintf(&b, "Total JPY value: %s JPY\n", yen(s.TotalJPYValue))
	fmt.Fprintf(&b, "P/L: %s JPY", yen(s.PL))
	for _, r := range s.Records {
		fmt.Fprintf(&b, "\n- %s: %s @ %s = %s JPY", r.Currency, num(r.Amount), num(r.Rate), yen(r.JPYValue))
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yen(v float64) string {
	return fmt.Sprintf("%.0f", math.Round(v))
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyOrder(ctx context.Context, order models.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyOrder(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) NotifySummary(ctx context.Context, title string, summary models.Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifySummary(ctx, title, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stdout — заглушка, всё пишет в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) NotifyOrder(_ context.Context, o models.Order) error {
	s.log.Info("order executed",
		zap.String("pair", o.Pair),
		zap.String("order_type", string(o.OrderType)),
		zap.String("amount", orderAmount(o)),
	)
	return nil
}

func (s *Stdout) NotifySummary(_ context.Context, title string, sum models.Summary) error {
	s.log.Info(title,
		zap.Float64("total_invested", sum.TotalInvested),
		zap.Float64("total_jpy_value", sum.TotalJPYValue),
		zap.Float64("pl", sum.PL),
		zap.Int("records", len(sum.Records)),
	)
	return nil
}
