package repository

import (
	"context"
	"errors"
	"fmt"

	"coincheck_bot/internal/models"
	"coincheck_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

type Summaries struct {
	db db.TxManager
}

func NewSummaries(db db.TxManager) *Summaries {
	return &Summaries{db: db}
}

// Create writes the summary and all its records atomically.
func (s *Summaries) Create(ctx context.Context, summary *models.Summary) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateSummary: %w", err)
		}
	}()
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctxTx,
			`INSERT INTO summaries (total_invested, total_jpy_value, pl)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			summary.TotalInvested, summary.TotalJPYValue, summary.PL,
		).Scan(&summary.ID, &summary.CreatedAt)
		if err != nil {
			return err
		}

		for i := range summary.Records {
			r := &summary.Records[i]
			r.SummaryID = summary.ID
			err := tx.QueryRow(ctxTx,
				`INSERT INTO summary_records (summary_id, currency, amount, rate, jpy_value)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id`,
				r.SummaryID, r.Currency, r.Amount, r.Rate, r.JPYValue,
			).Scan(&r.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Latest returns the newest summary with its records.
func (s *Summaries) Latest(ctx context.Context) (summary models.Summary, found bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.LatestSummary: %w", err)
		}
	}()
	err = s.db.Conn().QueryRow(ctx,
		`SELECT id, total_invested, total_jpy_value, pl, created_at
		 FROM summaries ORDER BY id DESC LIMIT 1`,
	).Scan(&summary.ID, &summary.TotalInvested, &summary.TotalJPYValue, &summary.PL, &summary.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Summary{}, false, nil
	}
	if err != nil {
		return models.Summary{}, false, err
	}

	rows, err := s.db.Conn().Query(ctx,
		`SELECT id, summary_id, currency, amount, rate, jpy_value
		 FROM summary_records WHERE summary_id = $1 ORDER BY id`,
		summary.ID,
	)
	if err != nil {
		return models.Summary{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var r models.SummaryRecord
		if err := rows.Scan(&r.ID, &r.SummaryID, &r.Currency, &r.Amount, &r.Rate, &r.JPYValue); err != nil {
			return models.Summary{}, false, err
		}
		summary.Records = append(summary.Records, r)
	}
	if err := rows.Err(); err != nil {
		return models.Summary{}, false, err
	}
	return summary, true, nil
}
