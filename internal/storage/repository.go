package storage

import (
	"context"
	"database/sql"
	"time"

	pq "github.com/lib/pq"

	"github.com/guttosm/stock-service/internal/domain/models"
)

// TickerRepository defines contract for DB operations on ticker prices.
type TickerRepository interface {
	LatestPricesSince(ctx context.Context, since time.Time) ([]models.TickerPrice, error)
	InsertPricesBatch(ctx context.Context, prices []models.TickerPrice) error
	HasIngestionForFile(ctx context.Context, filename string) (bool, error)
	UpsertIngestionLog(ctx context.Context, filename string, rowCount int) error
	DeletePricesByFile(ctx context.Context, filename string) error
}

type tickerRepository struct {
	db *sql.DB
}

func NewTickerRepository(db *sql.DB) TickerRepository {
	return &tickerRepository{db: db}
}

const latestPricesQuery = `
	SELECT DISTINCT ON (symbol) symbol, price, traded_at
	FROM ticker_prices
	WHERE traded_at >= $1
	ORDER BY symbol, traded_at DESC`

// LatestPricesSince returns the most recent observation per symbol traded at or after since.
func (r *tickerRepository) LatestPricesSince(ctx context.Context, since time.Time) ([]models.TickerPrice, error) {
	rows, err := r.db.QueryContext(ctx, latestPricesQuery, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.TickerPrice
	for rows.Next() {
		var p models.TickerPrice
		if err := rows.Scan(&p.Symbol, &p.Price, &p.TradedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertPricesBatch bulk loads prices with COPY in a single transaction.
func (r *tickerRepository) InsertPricesBatch(ctx context.Context, prices []models.TickerPrice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("ticker_prices", "symbol", "price", "traded_at", "source_file"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, p := range prices {
		if _, err := stmt.ExecContext(ctx, p.Symbol, p.Price, p.TradedAt, p.SourceFile); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// HasIngestionForFile checks if a file was already recorded in the ingestion log.
func (r *tickerRepository) HasIngestionForFile(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or refreshes) an ingestion entry for a file.
func (r *tickerRepository) UpsertIngestionLog(ctx context.Context, filename string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_log (filename, row_count)
		VALUES ($1, $2)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, rowCount)
	return err
}

// DeletePricesByFile removes every row previously loaded from filename.
func (r *tickerRepository) DeletePricesByFile(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ticker_prices WHERE source_file = $1`, filename)
	return err
}
