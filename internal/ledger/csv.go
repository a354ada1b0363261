package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"coincheck_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Coincheck trade history export columns.
var columns = []string{"id", "time", "operation", "amount", "trading_currency", "price", "original_currency", "fee", "comment"}

const timeLayout = "2006-01-02 15:04:05"

var operations = map[string]models.TransactionType{
	"Buy":  models.TransactionBuy,
	"Sell": models.TransactionSell,
}

// Parse reads a Coincheck export. Rows other than Buy and Sell (deposits,
// withdrawals, fees) are counted in skipped.
func Parse(r io.Reader) (txs []models.Transaction, skipped int, err error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if err != nil {
		return nil, 0, errors.Wrap(err, "read header")
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, 0, err
	}

	for line := 2; ; line++ {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "line %d", line)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		op, ok := operations[get("operation")]
		if !ok {
			skipped++
			continue
		}
		tx, err := toTransaction(op, get)
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "line %d", line)
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok && c != "comment" && c != "fee" {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return idx, nil
}

func toTransaction(op models.TransactionType, get func(string) string) (models.Transaction, error) {
	raw := get("time")
	if len(raw) < len(timeLayout) {
		return models.Transaction{}, fmt.Errorf("bad time %q", raw)
	}
	at, err := time.Parse(timeLayout, raw[:len(timeLayout)])
	if err != nil {
		return models.Transaction{}, errors.Wrap(err, "parse time")
	}

	amount, err := decimal.NewFromString(get("amount"))
	if err != nil {
		return models.Transaction{}, errors.Wrap(err, "parse amount")
	}
	if amount.IsZero() {
		return models.Transaction{}, errors.New("zero amount")
	}
	price, err := decimal.NewFromString(get("price"))
	if err != nil {
		return models.Transaction{}, errors.Wrap(err, "parse price")
	}
	fee := decimal.Zero
	if s := get("fee"); s != "" {
		if fee, err = decimal.NewFromString(s); err != nil {
			return models.Transaction{}, errors.Wrap(err, "parse fee")
		}
	}

	amount, price = amount.Abs(), price.Abs()
	quote := strings.ToLower(get("original_currency"))
	tx := models.Transaction{
		ExternalID: get("id"),
		OrderType:  op,
		Pair:       strings.ToLower(get("trading_currency")) + "_" + quote,
		Rate:       price.Div(amount).InexactFloat64(),
		Amount:     amount.InexactFloat64(),
		Price:      price.InexactFloat64(),
		Fee:        fee.Abs().InexactFloat64(),
		Comment:    get("comment"),
		CreatedAt:  at,
	}
	if !fee.IsZero() {
		tx.FeeCurrency = quote
	}
	if tx.ExternalID == "" {
		return models.Transaction{}, errors.New("empty id")
	}
	return tx, nil
}
