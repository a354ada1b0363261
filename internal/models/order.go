package models

import "time"

// Order is an append-only record of one decision, executed or not.
type Order struct {
	ID               int64
	Pair             string
	OrderType        OrderType
	CryptoAmount     float64
	JPYAmount        float64
	BuyRate          *float64
	SellRate         *float64
	SpreadRatio      *float64
	SpreadThreshold  *float64
	MAShort          *int
	MALong           *int
	MAWinRate        *float64
	Comment          string
	APICallSuccessAt *time.Time
	CreatedAt        time.Time
}

// OrderFrom copies the instruction's amounts and diagnostics into a new order.
func OrderFrom(in Instruction) Order {
	return Order{
		Pair:            in.Pair,
		OrderType:       in.Kind,
		CryptoAmount:    in.CryptoAmount,
		JPYAmount:       in.JPYAmount,
		SpreadRatio:     in.SpreadRatio,
		SpreadThreshold: in.SpreadThreshold,
		MAShort:         in.ShortWindow,
		MALong:          in.LongWindow,
		MAWinRate:       in.WinRate,
		Comment:         in.Reason,
	}
}

type Summary struct {
	ID            int64
	TotalInvested float64
	TotalJPYValue float64
	PL            float64
	Records       []SummaryRecord
	CreatedAt     time.Time
}

type SummaryRecord struct {
	ID        int64
	SummaryID int64
	Currency  string
	Amount    float64
	Rate      float64
	JPYValue  float64
}

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is a fill imported from the exchange's trade history export.
type Transaction struct {
	ID          int64
	ExternalID  string
	OrderType   TransactionType
	Pair        string
	Rate        float64
	Amount      float64
	Price       float64
	Fee         float64
	FeeCurrency string
	Comment     string
	CreatedAt   time.Time
}
