package models

type StrategyType string

const (
	StrategyOptimizer StrategyType = "optimizer"
	StrategyBasic     StrategyType = "basic"
	StrategyRatio     StrategyType = "ratio"
)

// OrderType is the persisted kind of an order row. Hold and insufficient_data
// rows never reach the exchange.
type OrderType string

const (
	MarketBuy        OrderType = "market_buy"
	MarketSell       OrderType = "market_sell"
	Hold             OrderType = "hold"
	InsufficientData OrderType = "insufficient_data"
)

// Executable reports whether the order type is sent to the exchange.
func (t OrderType) Executable() bool {
	return t == MarketBuy || t == MarketSell
}

// Side как в API биржи: "buy"/"sell".
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Diagnostics is shared by every signal variant. Nil fields were not computed
// before the decision was made.
type Diagnostics struct {
	SpreadRatio     *float64
	SpreadThreshold *float64
	ShortWindow     *int
	LongWindow      *int
	WinRate         *float64
	Reason          string
}

// Signal is the unsized decision for one currency.
// Amount is the crypto quantity for market_sell and always 0 for market_buy:
// buy sizes are decided later by the allocator.
type Signal struct {
	Kind   OrderType
	Pair   string
	Amount float64
	Diagnostics
}

func NewMarketBuy(pair string, d Diagnostics) Signal {
	return Signal{Kind: MarketBuy, Pair: pair, Diagnostics: d}
}

func NewMarketSell(pair string, amount float64, d Diagnostics) Signal {
	return Signal{Kind: MarketSell, Pair: pair, Amount: amount, Diagnostics: d}
}

func NewHold(pair string, d Diagnostics) Signal {
	return Signal{Kind: Hold, Pair: pair, Diagnostics: d}
}

func NewInsufficientData(pair string, d Diagnostics) Signal {
	return Signal{Kind: InsufficientData, Pair: pair, Diagnostics: d}
}

// Instruction is a signal with its final amounts.
type Instruction struct {
	Signal
	CryptoAmount float64
	JPYAmount    float64
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
