package runner

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
	"coincheck_bot/internal/notify"

	"go.uber.org/zap"
)

type Valuer interface {
	Balances(ctx context.Context) (models.Balances, error)
	Rate(ctx context.Context, pair string) (models.Rate, error)
}

type SummaryStore interface {
	Create(ctx context.Context, summary *models.Summary) error
}

type Ledger interface {
	TotalInvested(ctx context.Context) (float64, error)
}

// Reporter values current holdings in JPY and records a portfolio summary.
type Reporter struct {
	ex        Valuer
	summaries SummaryStore
	ledger    Ledger
	notifier  notify.Notifier
	log       *zap.Logger
}

func NewReporter(ex Valuer, summaries SummaryStore, ledger Ledger, notifier notify.Notifier, log *zap.Logger) *Reporter {
	return &Reporter{
		ex:        ex,
		summaries: summaries,
		ledger:    ledger,
		notifier:  notifier,
		log:       log,
	}
}

// Build values holdings without persisting anything.
func (r *Reporter) Build(ctx context.Context) (models.Summary, error) {
	balances, err := r.ex.Balances(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("fetch balances: %w", err)
	}

	var summary models.Summary
	for _, currency := range balances.TradingCurrencies() {
		amount := balances[currency]
		rate, err := r.ex.Rate(ctx, models.PairFor(currency))
		if err != nil {
			r.log.Warn("currency left out of summary", zap.String("currency", currency), zap.Error(err))
			continue
		}
		summary.Records = append(summary.Records, models.SummaryRecord{
			Currency: currency,
			Amount:   amount,
			Rate:     rate.SellRate,
			JPYValue: amount * rate.SellRate,
		})
	}

	jpy := balances.Fiat()
	summary.Records = append(summary.Records, models.SummaryRecord{
		Currency: models.Fiat,
		Amount:   jpy,
		Rate:     1,
		JPYValue: jpy,
	})

	for _, rec := range summary.Records {
		summary.TotalJPYValue += rec.JPYValue
	}

	summary.TotalInvested, err = r.ledger.TotalInvested(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("total invested: %w", err)
	}
	summary.PL = summary.TotalJPYValue - summary.TotalInvested
	return summary, nil
}

// Report builds, persists and announces a summary. Only notification errors
// are swallowed.
func (r *Reporter) Report(ctx context.Context, title string) (models.Summary, error) {
	summary, err := r.Build(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	if err := r.summaries.Create(ctx, &summary); err != nil {
		return models.Summary{}, fmt.Errorf("persist summary: %w", err)
	}
	if err := r.notifier.NotifySummary(ctx, title, summary); err != nil {
		r.log.Warn("summary notification failed", zap.Error(err))
	}
	return summary, nil
}
