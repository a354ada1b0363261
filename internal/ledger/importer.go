package ledger

import (
	"context"
	"io"

	"coincheck_bot/internal/models"

	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, tx models.Transaction) (bool, error)
}

type Result struct {
	Inserted   int
	Duplicates int
	Skipped    int
}

type Importer struct {
	store Store
	log   *zap.Logger
}

func NewImporter(store Store, log *zap.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// Import parses the whole file before writing, so a malformed row stores nothing.
// Rows already in the ledger are counted as duplicates.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	txs, skipped, err := Parse(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Skipped: skipped}
	for _, tx := range txs {
		inserted, err := im.store.Create(ctx, tx)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Duplicates++
		}
	}

	im.log.Info("transactions imported",
		zap.Int("inserted", res.Inserted),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
