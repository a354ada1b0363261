package models

import (
	"sort"
	"strings"
	"time"
)

const (
	Fiat       = "jpy"
	pairSuffix = "_jpy"
)

// PairFor returns the JPY-quoted pair for a currency, e.g. "btc" -> "btc_jpy".
func PairFor(currency string) string {
	return strings.ToLower(currency) + pairSuffix
}

// CurrencyOf returns the traded currency of a pair, e.g. "btc_jpy" -> "btc".
func CurrencyOf(pair string) string {
	return strings.TrimSuffix(pair, pairSuffix)
}

type Ticker struct {
	ID        int64
	Pair      string
	Last      float64
	Bid       float64
	Ask       float64
	High      float64
	Low       float64
	Volume    float64
	Timestamp time.Time
}

// Spread returns ((ask-bid)/bid)*100.
func (t Ticker) Spread() float64 {
	if t.Bid == 0 {
		return 0
	}
	return (t.Ask - t.Bid) / t.Bid * 100
}

// OptimizedWindow is a backtested short/long window pair for one pair.
type OptimizedWindow struct {
	ID            int64
	Pair          string
	ShortWindow   int
	LongWindow    int
	OffsetMinutes int
	Total         int
	Wins          int
	WinRatePct    float64
	CreatedAt     time.Time
}

type Rate struct {
	Pair        string
	BuyRate     float64
	SellRate    float64
	SpreadRatio float64
}

// Balances maps currency (and sub-account keys like "btc_reserved") to amount.
type Balances map[string]float64

func (b Balances) Fiat() float64 { return b[Fiat] }

// TradingCurrencies lists held currencies other than JPY, sorted.
func (b Balances) TradingCurrencies() []string {
	out := make([]string, 0, len(b))
	for k, v := range b {
		if v == 0 || k == Fiat || strings.Contains(k, "_") {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OrderResult is the raw exchange answer to an order submission.
type OrderResult struct {
	StatusCode int
	Body       string
	Error      string
}

func (r OrderResult) Success() bool {
	return r.StatusCode/100 == 2
}

// Message prefers the exchange error field over the raw body.
func (r OrderResult) Message() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Body
}
