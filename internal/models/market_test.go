package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalancesTradingCurrencies(t *testing.T) {
	b := Balances{
		"jpy":           30000,
		"btc":           0.01,
		"eth":           0.5,
		"xrp":           0,
		"btc_reserved":  0.002,
		"eth_tsumitate": 0.1,
	}

	assert.Equal(t, []string{"btc", "eth"}, b.TradingCurrencies())
	assert.Equal(t, 30000.0, b.Fiat())
}

func TestPairHelpers(t *testing.T) {
	assert.Equal(t, "btc_jpy", PairFor("BTC"))
	assert.Equal(t, "eth", CurrencyOf("eth_jpy"))
}

func TestTickerSpread(t *testing.T) {
	assert.InDelta(t, 2.0, Ticker{Bid: 100, Ask: 102}.Spread(), 1e-9)
	assert.Zero(t, Ticker{Bid: 0, Ask: 1}.Spread())
}

func TestOrderResult(t *testing.T) {
	ok := OrderResult{StatusCode: 200, Body: `{"success":true}`}
	assert.True(t, ok.Success())

	bad := OrderResult{StatusCode: 400, Body: `{"success":false,"error":"Amount is too small"}`, Error: "Amount is too small"}
	assert.False(t, bad.Success())
	assert.Equal(t, "Amount is too small", bad.Message())

	raw := OrderResult{StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "bad gateway", raw.Message())
}

func TestOrderFromInstruction(t *testing.T) {
	in := Instruction{
		Signal: NewMarketSell("eth_jpy", 0.004, Diagnostics{
			ShortWindow: Int(5),
			LongWindow:  Int(20),
			WinRate:     Float(72),
			Reason:      "dead cross",
		}),
		CryptoAmount: 0.004,
	}

	o := OrderFrom(in)
	assert.Equal(t, MarketSell, o.OrderType)
	assert.Equal(t, "eth_jpy", o.Pair)
	assert.Equal(t, 0.004, o.CryptoAmount)
	assert.Equal(t, 5, *o.MAShort)
	assert.Equal(t, 20, *o.MALong)
	assert.Equal(t, "dead cross", o.Comment)
	assert.Nil(t, o.SpreadRatio)
}
