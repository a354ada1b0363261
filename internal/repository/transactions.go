package repository

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
	"coincheck_bot/pkg/db"
)

// Transactions is the ledger of fills imported from the exchange.
type Transactions struct {
	db db.TxManager
}

func NewTransactions(db db.TxManager) *Transactions {
	return &Transactions{db: db}
}

// Create inserts tx unless a row with the same external id exists.
// inserted reports whether a new row was written.
func (t *Transactions) Create(ctx context.Context, tx models.Transaction) (inserted bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateTransaction(%s): %w", tx.ExternalID, err)
		}
	}()
	tag, err := t.db.Conn().Exec(ctx,
		`INSERT INTO transactions (external_id, order_type, pair, rate, amount, price, fee, fee_currency, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (external_id) DO NOTHING`,
		tx.ExternalID, string(tx.OrderType), tx.Pair, tx.Rate, tx.Amount, tx.Price, tx.Fee, tx.FeeCurrency, tx.Comment, tx.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// TotalInvested sums the JPY price of every buy in the ledger.
func (t *Transactions) TotalInvested(ctx context.Context) (total float64, err error) {
	err = t.db.Conn().QueryRow(ctx,
		`SELECT COALESCE(SUM(price), 0)::float8 FROM transactions WHERE order_type = $1`,
		string(models.TransactionBuy),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("pg.TotalInvested: %w", err)
	}
	return total, nil
}
