package repository

import (
	"context"
	"fmt"

	"coincheck_bot/internal/models"
	"coincheck_bot/pkg/db"
)

// Orders is the append-only decision log.
type Orders struct {
	db db.TxManager
}

func NewOrders(db db.TxManager) *Orders {
	return &Orders{db: db}
}

// Create in db. ID and CreatedAt are filled from the inserted row.
func (o *Orders) Create(ctx context.Context, order *models.Order) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateOrder(%s): %w", order.Pair, err)
		}
	}()
	return o.db.Conn().QueryRow(ctx,
		`INSERT INTO orders (
			pair, order_type, crypto_amount, jpy_amount, buy_rate, sell_rate,
			spread_ratio, spread_threshold, ma_short, ma_long, ma_win_rate,
			comment, api_call_success_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		order.Pair, string(order.OrderType), order.CryptoAmount, order.JPYAmount, order.BuyRate, order.SellRate,
		order.SpreadRatio, order.SpreadThreshold, order.MAShort, order.MALong, order.MAWinRate,
		order.Comment, order.APICallSuccessAt,
	).Scan(&order.ID, &order.CreatedAt)
}

// Recent returns the newest limit orders, newest first.
func (o *Orders) Recent(ctx context.Context, limit int) (out []models.Order, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.RecentOrders: %w", err)
		}
	}()
	rows, err := o.db.Conn().Query(ctx,
		`SELECT id, pair, order_type, crypto_amount, jpy_amount, buy_rate, sell_rate,
			spread_ratio, spread_threshold, ma_short, ma_long, ma_win_rate,
			comment, api_call_success_at, created_at
		 FROM orders
		 ORDER BY id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ord models.Order
			typ string
		)
		if err := rows.Scan(
			&ord.ID, &ord.Pair, &typ, &ord.CryptoAmount, &ord.JPYAmount, &ord.BuyRate, &ord.SellRate,
			&ord.SpreadRatio, &ord.SpreadThreshold, &ord.MAShort, &ord.MALong, &ord.MAWinRate,
			&ord.Comment, &ord.APICallSuccessAt, &ord.CreatedAt,
		); err != nil {
			return nil, err
		}
		ord.OrderType = models.OrderType(typ)
		out = append(out, ord)
	}
	return out, rows.Err()
}
