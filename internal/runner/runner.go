package runner

import (
	"context"
	"fmt"
	"time"

	"coincheck_bot/internal/allocation"
	"coincheck_bot/internal/models"
	"coincheck_bot/internal/notify"
	"coincheck_bot/internal/strategy"
	"coincheck_bot/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Exchange interface {
	Balances(ctx context.Context) (models.Balances, error)
	Ticker(ctx context.Context, pair string) (models.Ticker, error)
	Rate(ctx context.Context, pair string) (models.Rate, error)
	PostMarketOrder(ctx context.Context, pair string, side models.Side, amount float64) (models.OrderResult, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
}

// Report describes what a single run did.
type Report struct {
	RunID     string
	Orders    []models.Order
	Succeeded int
	Summary   *models.Summary
}

// Runner executes one decision round over every held currency. It is strictly
// sequential: the exchange client paces the calls.
type Runner struct {
	ex       Exchange
	strategy strategy.Strategy
	alloc    *allocation.Allocator
	orders   OrderStore
	reporter *Reporter
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func New(
	ex Exchange,
	stg strategy.Strategy,
	alloc *allocation.Allocator,
	orders OrderStore,
	reporter *Reporter,
	notifier notify.Notifier,
	log *zap.Logger,
) *Runner {
	return &Runner{
		ex:       ex,
		strategy: stg,
		alloc:    alloc,
		orders:   orders,
		reporter: reporter,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Run returns an error only for failures that make the round untrustworthy:
// no balances, or a write that did not reach storage.
func (r *Runner) Run(ctx context.Context) (rep Report, err error) {
	rep.RunID = uuid.NewString()
	span, ctx := tracing.StartSpan(ctx, "runner.Run", map[string]any{
		"run_id":   rep.RunID,
		"strategy": string(r.strategy.Name()),
	})
	defer func() {
		tracing.Fail(span, err)
		span.Finish()
	}()
	log := r.log.With(zap.String("run_id", rep.RunID))

	instructions, err := r.plan(ctx, log)
	if err != nil {
		return rep, err
	}

	for _, in := range instructions {
		order, ok, err := r.execute(ctx, log, in)
		if err != nil {
			return rep, err
		}
		rep.Orders = append(rep.Orders, order)
		if !ok {
			continue
		}
		rep.Succeeded++
		if nerr := r.notifier.NotifyOrder(ctx, order); nerr != nil {
			log.Warn("order notification failed", zap.String("pair", order.Pair), zap.Error(nerr))
		}
	}

	if rep.Succeeded == 0 {
		log.Info("run finished without executed orders", zap.Int("orders", len(rep.Orders)))
		return rep, nil
	}

	summary, err := r.reporter.Report(ctx, "Order summary")
	if err != nil {
		return rep, fmt.Errorf("summary: %w", err)
	}
	rep.Summary = &summary
	log.Info("run finished",
		zap.Int("orders", len(rep.Orders)),
		zap.Int("succeeded", rep.Succeeded),
		zap.Float64("pl", summary.PL),
	)
	return rep, nil
}

// Plan returns the sized instructions a run would execute, without submitting
// or persisting anything.
func (r *Runner) Plan(ctx context.Context) ([]models.Instruction, error) {
	return r.plan(ctx, r.log)
}

func (r *Runner) plan(ctx context.Context, log *zap.Logger) ([]models.Instruction, error) {
	balances, err := r.ex.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}
	log.Info("run started",
		zap.String("strategy", string(r.strategy.Name())),
		zap.Float64("jpy", balances.Fiat()),
		zap.Strings("currencies", balances.TradingCurrencies()),
	)

	signals := r.decide(ctx, log, balances)
	return r.alloc.Allocate(signals, balances.Fiat()), nil
}

// decide asks the strategy about every held currency. Failures only cost the
// currency they happened for.
func (r *Runner) decide(ctx context.Context, log *zap.Logger, balances models.Balances) []models.Signal {
	currencies := balances.TradingCurrencies()
	signals := make([]models.Signal, 0, len(currencies))

	for _, currency := range currencies {
		pair := models.PairFor(currency)
		clog := log.With(zap.String("pair", pair))

		sig, err := r.decideOne(ctx, pair, balances[currency])
		if err != nil {
			clog.Warn("currency skipped", zap.Error(err))
			continue
		}
		clog.Info("signal",
			zap.String("order_type", string(sig.Kind)),
			zap.Float64("amount", sig.Amount),
			zap.String("reason", sig.Reason),
		)
		signals = append(signals, sig)
	}
	return signals
}

func (r *Runner) decideOne(ctx context.Context, pair string, balance float64) (sig models.Signal, err error) {
	span, ctx := tracing.StartSpan(ctx, "runner.decide", map[string]any{"pair": pair})
	defer func() {
		tracing.Fail(span, err)
		span.Finish()
	}()

	tick, err := r.ex.Ticker(ctx, pair)
	if err != nil {
		return models.Signal{}, fmt.Errorf("ticker: %w", err)
	}
	sig, err = r.strategy.DetermineTradeSignal(ctx, strategy.Input{
		Pair:          pair,
		Bid:           tick.Bid,
		Ask:           tick.Ask,
		CryptoBalance: balance,
	})
	if err != nil {
		return models.Signal{}, fmt.Errorf("strategy: %w", err)
	}
	return sig, nil
}

// execute submits and persists one instruction. ok reports an exchange-accepted
// order; err is set only when the order could not be persisted.
func (r *Runner) execute(ctx context.Context, log *zap.Logger, in models.Instruction) (order models.Order, ok bool, err error) {
	span, ctx := tracing.StartSpan(ctx, "runner.execute", map[string]any{
		"pair":       in.Pair,
		"order_type": string(in.Kind),
	})
	defer func() {
		tracing.Fail(span, err)
		span.Finish()
	}()

	order = models.OrderFrom(in)
	clog := log.With(zap.String("pair", in.Pair), zap.String("order_type", string(in.Kind)))

	if in.Kind.Executable() {
		ok = r.submit(ctx, clog, &order)
	}

	if err := r.orders.Create(ctx, &order); err != nil {
		return order, false, fmt.Errorf("%s: persist %s order: %w", in.Pair, in.Kind, err)
	}
	return order, ok, nil
}

func (r *Runner) submit(ctx context.Context, log *zap.Logger, order *models.Order) bool {
	side, amount := models.SideBuy, order.JPYAmount
	if order.OrderType == models.MarketSell {
		side, amount = models.SideSell, order.CryptoAmount
	}

	res, err := r.ex.PostMarketOrder(ctx, order.Pair, side, amount)
	if err != nil {
		order.Comment = fmt.Sprintf("%s, [error]: %v", order.Comment, err)
		log.Error("order submission failed", zap.Float64("amount", amount), zap.Error(err))
		return false
	}

	if !res.Success() {
		order.Comment = fmt.Sprintf("%s, [%d]: %s", order.Comment, res.StatusCode, res.Message())
		log.Error("order rejected",
			zap.Float64("amount", amount),
			zap.Int("status", res.StatusCode),
			zap.String("error", res.Message()),
		)
		return false
	}

	order.Comment = fmt.Sprintf("%s, [%d]: %s", order.Comment, res.StatusCode, res.Body)
	at := r.now().UTC()
	order.APICallSuccessAt = &at
	log.Info("order accepted", zap.Float64("amount", amount), zap.Int("status", res.StatusCode))

	rate, err := r.ex.Rate(ctx, order.Pair)
	if err != nil {
		log.Warn("rate snapshot failed", zap.Error(err))
		return true
	}
	order.BuyRate = &rate.BuyRate
	order.SellRate = &rate.SellRate
	order.SpreadRatio = &rate.SpreadRatio
	return true
}
