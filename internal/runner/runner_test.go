package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"coincheck_bot/internal/allocation"
	"coincheck_bot/internal/models"
	"coincheck_bot/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type call struct {
	method string
	pair   string
	side   models.Side
	amount float64
}

type fakeExchange struct {
	mu          sync.Mutex
	balances    models.Balances
	balancesErr error
	tickerErr   map[string]error
	rates       map[string]models.Rate
	reject      map[string]models.OrderResult
	postErr     map[string]error
	calls       []call
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		balances: models.Balances{"jpy": 30000, "btc": 0.002, "eth": 0.5, "xrp": 100, "btc_reserved": 1},
		rates: map[string]models.Rate{
			"btc_jpy": {Pair: "btc_jpy", BuyRate: 15150000, SellRate: 15000000, SpreadRatio: 1.0},
			"eth_jpy": {Pair: "eth_jpy", BuyRate: 505000, SellRate: 500000},
			"xrp_jpy": {Pair: "xrp_jpy", BuyRate: 101, SellRate: 100},
		},
	}
}

func (f *fakeExchange) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeExchange) Balances(context.Context) (models.Balances, error) {
	f.record(call{method: "balances"})
	return f.balances, f.balancesErr
}

func (f *fakeExchange) Ticker(_ context.Context, pair string) (models.Ticker, error) {
	f.record(call{method: "ticker", pair: pair})
	if err := f.tickerErr[pair]; err != nil {
		return models.Ticker{}, err
	}
	return models.Ticker{Pair: pair, Bid: 100, Ask: 101}, nil
}

func (f *fakeExchange) Rate(_ context.Context, pair string) (models.Rate, error) {
	f.record(call{method: "rate", pair: pair})
	r, ok := f.rates[pair]
	if !ok {
		return models.Rate{}, errors.New("no rate")
	}
	return r, nil
}

func (f *fakeExchange) PostMarketOrder(_ context.Context, pair string, side models.Side, amount float64) (models.OrderResult, error) {
	f.record(call{method: "order", pair: pair, side: side, amount: amount})
	if err := f.postErr[pair]; err != nil {
		return models.OrderResult{}, err
	}
	if res, ok := f.reject[pair]; ok {
		return res, nil
	}
	return models.OrderResult{StatusCode: 200, Body: `{"success":true}`}, nil
}

func (f *fakeExchange) orderCalls() []call {
	var out []call
	for _, c := range f.calls {
		if c.method == "order" {
			out = append(out, c)
		}
	}
	return out
}

// scripted returns a prepared signal per pair.
type scripted map[string]models.Signal

func (s scripted) Name() models.StrategyType { return models.StrategyOptimizer }

func (s scripted) DetermineTradeSignal(_ context.Context, in strategy.Input) (models.Signal, error) {
	sig, ok := s[in.Pair]
	if !ok {
		return models.Signal{}, fmt.Errorf("no signal for %s", in.Pair)
	}
	if sig.Kind == models.MarketSell {
		sig.Amount = in.CryptoBalance * 0.5
	}
	return sig, nil
}

type memOrders struct {
	saved []models.Order
	err   error
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	if m.err != nil {
		return m.err
	}
	o.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, *o)
	return nil
}

type memSummaries struct {
	saved []models.Summary
	err   error
}

func (m *memSummaries) Create(_ context.Context, s *models.Summary) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *s)
	return nil
}

type ledger float64

func (l ledger) TotalInvested(context.Context) (float64, error) { return float64(l), nil }

type recordingNotifier struct {
	orders    []models.Order
	summaries []models.Summary
	err       error
}

func (r *recordingNotifier) NotifyOrder(_ context.Context, o models.Order) error {
	r.orders = append(r.orders, o)
	return r.err
}

func (r *recordingNotifier) NotifySummary(_ context.Context, _ string, s models.Summary) error {
	r.summaries = append(r.summaries, s)
	return r.err
}

type fixture struct {
	ex        *fakeExchange
	orders    *memOrders
	summaries *memSummaries
	notifier  *recordingNotifier
	logs      *observer.ObservedLogs
	runner    *Runner
}

var defaultSignals = scripted{
	"btc_jpy": models.NewMarketBuy("btc_jpy", models.Diagnostics{Reason: "golden cross", SpreadRatio: models.Float(0.5)}),
	"eth_jpy": models.NewMarketSell("eth_jpy", 0, models.Diagnostics{Reason: "dead cross"}),
	"xrp_jpy": models.NewHold("xrp_jpy", models.Diagnostics{Reason: "spread too wide"}),
}

func newFixture(t *testing.T, signals scripted) *fixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	f := &fixture{
		ex:        newFakeExchange(),
		orders:    &memOrders{},
		summaries: &memSummaries{},
		notifier:  &recordingNotifier{},
		logs:      logs,
	}
	alloc := allocation.New(allocation.Config{
		Tiers:        []allocation.Tier{{Threshold: 10000, Ratio: 0.1}, {Threshold: 50000, Ratio: 0.3}},
		DefaultRatio: 0.5,
	})
	reporter := NewReporter(f.ex, f.summaries, ledger(25000), f.notifier, log)
	f.runner = New(f.ex, signals, alloc, f.orders, reporter, f.notifier, log)
	f.runner.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return f
}

func TestRunSellsBeforeBuysAndSkipsExchangeForHold(t *testing.T) {
	f := newFixture(t, defaultSignals)

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.Succeeded)

	posted := f.ex.orderCalls()
	require.Len(t, posted, 2)
	assert.Equal(t, call{method: "order", pair: "eth_jpy", side: models.SideSell, amount: 0.25}, posted[0])
	// 30000 sits in the 50000 tier: 30000*0.3 for the single buy.
	assert.Equal(t, "btc_jpy", posted[1].pair)
	assert.Equal(t, models.SideBuy, posted[1].side)
	assert.InDelta(t, 9000, posted[1].amount, 1e-9)

	require.Len(t, f.orders.saved, 3)
	assert.Equal(t, []string{"eth_jpy", "btc_jpy", "xrp_jpy"},
		[]string{f.orders.saved[0].Pair, f.orders.saved[1].Pair, f.orders.saved[2].Pair})

	hold := f.orders.saved[2]
	assert.Equal(t, models.Hold, hold.OrderType)
	assert.Nil(t, hold.APICallSuccessAt)
	assert.Equal(t, "spread too wide", hold.Comment)
}

func TestRunRecordsSuccessfulOrder(t *testing.T) {
	f := newFixture(t, defaultSignals)

	_, err := f.runner.Run(context.Background())
	require.NoError(t, err)

	buy := f.orders.saved[1]
	require.NotNil(t, buy.APICallSuccessAt)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), *buy.APICallSuccessAt)
	require.NotNil(t, buy.BuyRate)
	assert.Equal(t, 15150000.0, *buy.BuyRate)
	assert.Equal(t, 15000000.0, *buy.SellRate)
	// spread taken after execution replaces the one seen at decision time
	require.NotNil(t, buy.SpreadRatio)
	assert.Equal(t, 1.0, *buy.SpreadRatio)
	assert.Equal(t, `golden cross, [200]: {"success":true}`, buy.Comment)

	assert.Len(t, f.notifier.orders, 2)
}

func TestRunWritesOneSummaryAfterSuccess(t *testing.T) {
	f := newFixture(t, defaultSignals)

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.summaries.saved, 1)
	require.Len(t, f.notifier.summaries, 1)
	require.NotNil(t, rep.Summary)

	s := f.summaries.saved[0]
	currencies := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		currencies = append(currencies, r.Currency)
	}
	assert.Equal(t, []string{"btc", "eth", "xrp", "jpy"}, currencies)

	// 0.002*15e6 + 0.5*5e5 + 100*100 + 30000
	assert.InDelta(t, 320000, s.TotalJPYValue, 1e-6)
	assert.Equal(t, 25000.0, s.TotalInvested)
	assert.InDelta(t, 295000, s.PL, 1e-6)
}

func TestRunWithoutSuccessWritesNoSummary(t *testing.T) {
	f := newFixture(t, scripted{
		"btc_jpy": models.NewHold("btc_jpy", models.Diagnostics{Reason: "no cross"}),
		"eth_jpy": models.NewInsufficientData("eth_jpy", models.Diagnostics{Reason: "not enough ticks"}),
		"xrp_jpy": models.NewHold("xrp_jpy", models.Diagnostics{}),
	})

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Succeeded)
	assert.Nil(t, rep.Summary)
	assert.Empty(t, f.ex.orderCalls())
	assert.Len(t, f.orders.saved, 3)
	assert.Empty(t, f.summaries.saved)
	assert.Empty(t, f.notifier.summaries)
}

func TestRunRejectedOrderKeepsGoing(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.ex.reject = map[string]models.OrderResult{
		"eth_jpy": {StatusCode: 400, Body: `{"success":false,"error":"Amount is too small"}`, Error: "Amount is too small"},
	}

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Succeeded)

	sell := f.orders.saved[0]
	assert.Equal(t, "eth_jpy", sell.Pair)
	assert.Nil(t, sell.APICallSuccessAt)
	assert.Nil(t, sell.BuyRate)
	assert.Equal(t, "dead cross, [400]: Amount is too small", sell.Comment)

	assert.Len(t, f.ex.orderCalls(), 2, "the buy is still submitted")
	assert.Len(t, f.summaries.saved, 1)
}

func TestRunTransportErrorIsRecorded(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.ex.postErr = map[string]error{"btc_jpy": errors.New("connection reset")}

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Succeeded)
	assert.Equal(t, "golden cross, [error]: connection reset", f.orders.saved[1].Comment)
}

func TestRunSkipsCurrencyOnTickerFailure(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.ex.tickerErr = map[string]error{"eth_jpy": errors.New("timeout")}

	_, err := f.runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.orders.saved, 2)
	for _, o := range f.orders.saved {
		assert.NotEqual(t, "eth_jpy", o.Pair)
	}
	assert.Equal(t, 1, f.logs.FilterMessage("currency skipped").Len())
}

func TestRunSkipsCurrencyOnStrategyFailure(t *testing.T) {
	f := newFixture(t, scripted{
		"btc_jpy": models.NewMarketBuy("btc_jpy", models.Diagnostics{}),
	})

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, f.orders.saved, 1)
	assert.Equal(t, 1, rep.Succeeded)
	// the only buy gets the whole tier share
	assert.InDelta(t, 9000, f.ex.orderCalls()[0].amount, 1e-9)
}

func TestRunFailsWithoutBalances(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.ex.balancesErr = errors.New("401 unauthorized")

	_, err := f.runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch balances")
	assert.Empty(t, f.orders.saved)
}

func TestRunFailsWhenOrderCannotBePersisted(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.orders.err = errors.New("disk full")

	_, err := f.runner.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, f.orders.err)
	assert.Len(t, f.ex.orderCalls(), 1, "stops after the first unpersisted order")
}

func TestRunFailsWhenSummaryCannotBePersisted(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.summaries.err = errors.New("deadlock")

	_, err := f.runner.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, f.summaries.err)
	assert.Empty(t, f.notifier.summaries)
}

func TestNotificationFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t, defaultSignals)
	f.notifier.err = errors.New("slack down")

	rep, err := f.runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Len(t, f.summaries.saved, 1)
	assert.Equal(t, 2, f.logs.FilterMessage("order notification failed").Len())
}

func TestReporterSkipsUnpricedCurrency(t *testing.T) {
	f := newFixture(t, defaultSignals)
	delete(f.ex.rates, "xrp_jpy")

	s, err := f.runner.reporter.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Records, 3)
	assert.Equal(t, "jpy", s.Records[2].Currency)
	assert.Equal(t, 1.0, s.Records[2].Rate)
	assert.Empty(t, f.summaries.saved, "Build does not persist")
}

func TestPlanHasNoSideEffects(t *testing.T) {
	f := newFixture(t, defaultSignals)

	plan, err := f.runner.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, models.MarketSell, plan[0].Kind)
	assert.Equal(t, 0.25, plan[0].CryptoAmount)
	assert.Equal(t, models.MarketBuy, plan[1].Kind)
	assert.InDelta(t, 9000, plan[1].JPYAmount, 1e-9)
	assert.Equal(t, models.Hold, plan[2].Kind)

	assert.Empty(t, f.ex.orderCalls())
	assert.Empty(t, f.orders.saved)
	assert.Empty(t, f.notifier.orders)
}
