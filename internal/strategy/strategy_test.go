package strategy

import (
	"context"
	"errors"
	"testing"

	"coincheck_bot/internal/models"
	"coincheck_bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// the Postgres repositories back the optimizer strategy on every platform
var (
	_ WindowSource = (*repository.OptimizedWindows)(nil)
	_ History      = (*repository.Tickers)(nil)
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) MovingAverage(ctx context.Context, pair string, window int) (float64, bool, error) {
	args := m.Called(ctx, pair, window)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *mockHistory) SpreadThreshold(ctx context.Context, pair string) (float64, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(float64), args.Error(1)
}

type mockWindows struct {
	mock.Mock
}

func (m *mockWindows) BestForPair(ctx context.Context, pair string) (models.OptimizedWindow, bool, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(models.OptimizedWindow), args.Bool(1), args.Error(2)
}

// fixed is a stateless History for table tests.
type fixed struct {
	short, long float64
	threshold   float64
	missing     bool
}

func (f fixed) MovingAverage(_ context.Context, _ string, window int) (float64, bool, error) {
	if f.missing {
		return 0, false, nil
	}
	if window < 10 {
		return f.short, true, nil
	}
	return f.long, true, nil
}

func (f fixed) SpreadThreshold(context.Context, string) (float64, error) {
	return f.threshold, nil
}

type bestWindow models.OptimizedWindow

func (b bestWindow) BestForPair(context.Context, string) (models.OptimizedWindow, bool, error) {
	if b.ShortWindow == 0 {
		return models.OptimizedWindow{}, false, nil
	}
	return models.OptimizedWindow(b), true, nil
}

var best5x20 = bestWindow{Pair: "btc_jpy", ShortWindow: 5, LongWindow: 20, WinRatePct: 72}

func baseConfig() Config {
	return Config{
		Type:          models.StrategyOptimizer,
		SellRatio:     0.4,
		MinSellAmount: 0.001,
		MinWinRate:    60,
	}
}

// bid 100 / ask 101 is a 1% live spread.
func quote(balance float64) Input {
	return Input{Pair: "btc_jpy", Bid: 100, Ask: 101, CryptoBalance: balance}
}

func TestOptimizerGoldenCross(t *testing.T) {
	s := NewOptimizer(baseConfig(), best5x20, fixed{short: 101, long: 100, threshold: 1.5})

	sig, err := s.DetermineTradeSignal(context.Background(), quote(0.01))
	require.NoError(t, err)

	assert.Equal(t, models.MarketBuy, sig.Kind)
	assert.Zero(t, sig.Amount)
	assert.Equal(t, 5, *sig.ShortWindow)
	assert.Equal(t, 20, *sig.LongWindow)
	assert.Equal(t, 72.0, *sig.WinRate)
	assert.InDelta(t, 1.0, *sig.SpreadRatio, 1e-9)
	assert.Equal(t, 1.5, *sig.SpreadThreshold)
}

func TestOptimizerDeadCrossSizing(t *testing.T) {
	s := NewOptimizer(baseConfig(), best5x20, fixed{short: 99, long: 100, threshold: 1.5})

	sig, err := s.DetermineTradeSignal(context.Background(), quote(0.01))
	require.NoError(t, err)
	assert.Equal(t, models.MarketSell, sig.Kind)
	assert.InDelta(t, 0.004, sig.Amount, 1e-12)

	cfg := baseConfig()
	cfg.SellRatio = 0.05
	s = NewOptimizer(cfg, best5x20, fixed{short: 99, long: 100, threshold: 1.5})

	sig, err = s.DetermineTradeSignal(context.Background(), quote(0.01))
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind)
	assert.Zero(t, sig.Amount)
	assert.Contains(t, sig.Reason, "below minimum sell size")
}

func TestOptimizerPerCurrencyMinimum(t *testing.T) {
	cfg := baseConfig()
	cfg.MinSellAmounts = map[string]float64{"btc": 0.005}
	s := NewOptimizer(cfg, best5x20, fixed{short: 99, long: 100, threshold: 1.5})

	sig, err := s.DetermineTradeSignal(context.Background(), quote(0.01))
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind, "0.004 is under the btc minimum of 0.005")
}

func TestOptimizerSpreadUnfavorable(t *testing.T) {
	for name, h := range map[string]fixed{
		"golden": {short: 101, long: 100, threshold: 1.5},
		"dead":   {short: 99, long: 100, threshold: 1.5},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewOptimizer(baseConfig(), best5x20, h)
			in := Input{Pair: "btc_jpy", Bid: 100, Ask: 102, CryptoBalance: 1}

			sig, err := s.DetermineTradeSignal(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, models.Hold, sig.Kind)
			assert.InDelta(t, 2.0, *sig.SpreadRatio, 1e-9)
			assert.Equal(t, 1.5, *sig.SpreadThreshold)
			assert.Contains(t, sig.Reason, "spread unfavorable")
		})
	}
}

func TestOptimizerSpreadWithinThresholdTrades(t *testing.T) {
	s := NewOptimizer(baseConfig(), best5x20, fixed{short: 101, long: 100, threshold: 1.0})

	sig, err := s.DetermineTradeSignal(context.Background(), Input{Pair: "btc_jpy", Bid: 100, Ask: 100.5})
	require.NoError(t, err)
	assert.Equal(t, models.MarketBuy, sig.Kind)
}

func TestOptimizerEqualAverages(t *testing.T) {
	s := NewOptimizer(baseConfig(), best5x20, fixed{short: 100, long: 100, threshold: 1.5})

	sig, err := s.DetermineTradeSignal(context.Background(), quote(1))
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind)
}

func TestOptimizerInsufficientData(t *testing.T) {
	h := &mockHistory{}
	h.On("MovingAverage", mock.Anything, "btc_jpy", 5).Return(0.0, false, nil)
	h.On("MovingAverage", mock.Anything, "btc_jpy", 20).Return(0.0, false, nil)
	s := NewOptimizer(baseConfig(), best5x20, h)

	sig, err := s.DetermineTradeSignal(context.Background(), quote(1))
	require.NoError(t, err)
	assert.Equal(t, models.InsufficientData, sig.Kind)
	assert.Nil(t, sig.SpreadRatio)
	h.AssertNotCalled(t, "SpreadThreshold", mock.Anything, mock.Anything)
}

func TestOptimizerNoWindowPair(t *testing.T) {
	h := &mockHistory{}
	s := NewOptimizer(baseConfig(), bestWindow{}, h)

	sig, err := s.DetermineTradeSignal(context.Background(), quote(1))
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind)
	assert.Nil(t, sig.ShortWindow)
	assert.Nil(t, sig.WinRate)
	h.AssertNotCalled(t, "MovingAverage", mock.Anything, mock.Anything, mock.Anything)
}

func TestOptimizerStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")

	w := &mockWindows{}
	w.On("BestForPair", mock.Anything, "btc_jpy").Return(models.OptimizedWindow{}, false, boom)
	_, err := NewOptimizer(baseConfig(), w, fixed{}).DetermineTradeSignal(context.Background(), quote(1))
	assert.ErrorIs(t, err, boom)

	h := &mockHistory{}
	h.On("MovingAverage", mock.Anything, "btc_jpy", 5).Return(101.0, true, nil)
	h.On("MovingAverage", mock.Anything, "btc_jpy", 20).Return(100.0, true, nil)
	h.On("SpreadThreshold", mock.Anything, "btc_jpy").Return(0.0, boom)
	_, err = NewOptimizer(baseConfig(), best5x20, h).DetermineTradeSignal(context.Background(), quote(1))
	assert.ErrorIs(t, err, boom)
	h.AssertExpectations(t)
}

func TestSelector(t *testing.T) {
	w := &mockWindows{}
	w.On("BestForPair", mock.Anything, "btc_jpy").
		Return(models.OptimizedWindow{Pair: "btc_jpy", ShortWindow: 5, LongWindow: 20, WinRatePct: 72}, true, nil)
	w.On("BestForPair", mock.Anything, "eth_jpy").
		Return(models.OptimizedWindow{Pair: "eth_jpy", ShortWindow: 6, LongWindow: 18, WinRatePct: 55}, true, nil)

	sel := NewSelector(w, 60)

	got, err := sel.Select(context.Background(), "btc_jpy")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.True(t, got.Trusted)
	assert.Equal(t, 5, got.Window.ShortWindow)

	got, err = sel.Select(context.Background(), "eth_jpy")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.False(t, got.Trusted)
}

func TestOptimizerUntrustedWindowHolds(t *testing.T) {
	h := &mockHistory{}
	win := bestWindow{Pair: "eth_jpy", ShortWindow: 6, LongWindow: 18, WinRatePct: 55}
	s := NewOptimizer(baseConfig(), win, h)

	sig, err := s.DetermineTradeSignal(context.Background(), Input{Pair: "eth_jpy", Bid: 100, Ask: 101})
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind)
	assert.Equal(t, 6, *sig.ShortWindow)
	assert.Equal(t, 18, *sig.LongWindow)
	assert.Equal(t, 55.0, *sig.WinRate)
	h.AssertNotCalled(t, "MovingAverage", mock.Anything, mock.Anything, mock.Anything)
}

func TestOptimizerNoBid(t *testing.T) {
	s := NewOptimizer(baseConfig(), best5x20, fixed{short: 101, long: 100, threshold: 1.5})

	sig, err := s.DetermineTradeSignal(context.Background(), Input{Pair: "btc_jpy", Bid: 0, Ask: 101})
	require.NoError(t, err)
	assert.Equal(t, models.Hold, sig.Kind)
}

func TestBasic(t *testing.T) {
	cfg := baseConfig()
	cfg.Type = models.StrategyBasic
	cfg.ShortWindow, cfg.LongWindow = 5, 20
	cfg.SpreadThreshold = 1.5

	tests := []struct {
		name string
		h    fixed
		in   Input
		want models.OrderType
	}{
		{"golden cross", fixed{short: 101, long: 100}, quote(0.01), models.MarketBuy},
		{"dead cross", fixed{short: 99, long: 100}, quote(0.01), models.MarketSell},
		{"dead cross dust", fixed{short: 99, long: 100}, quote(0.001), models.Hold},
		{"wide spread", fixed{short: 101, long: 100}, Input{Pair: "btc_jpy", Bid: 100, Ask: 102}, models.Hold},
		{"no history", fixed{missing: true}, quote(1), models.InsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := NewBasic(cfg, tt.h).DetermineTradeSignal(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.Kind)
			assert.Equal(t, 5, *sig.ShortWindow)
			assert.Nil(t, sig.WinRate)
		})
	}
}

func TestRatioCross(t *testing.T) {
	cfg := baseConfig()
	cfg.Type = models.StrategyRatio
	cfg.ShortWindow, cfg.LongWindow = 5, 20
	cfg.CrossRatio = 1.01

	tests := []struct {
		name        string
		short, long float64
		want        models.OrderType
	}{
		{"clears band upwards", 102, 100, models.MarketBuy},
		{"inside band above", 100.5, 100, models.Hold},
		{"inside band below", 99.5, 100, models.Hold},
		{"clears band downwards", 98, 100, models.MarketSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := fixed{short: tt.short, long: tt.long, threshold: 1.5}
			sig, err := NewRatioCross(cfg, h).DetermineTradeSignal(context.Background(), quote(0.01))
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.Kind)
		})
	}
}

func TestNew(t *testing.T) {
	for _, typ := range []models.StrategyType{models.StrategyOptimizer, models.StrategyBasic, models.StrategyRatio} {
		s, err := New(Config{Type: typ}, bestWindow{}, fixed{})
		require.NoError(t, err)
		assert.Equal(t, typ, s.Name())
	}

	_, err := New(Config{Type: "martingale"}, bestWindow{}, fixed{})
	assert.Error(t, err)
}
