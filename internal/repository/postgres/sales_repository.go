// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesRecord, error) {
	query := `
		SELECT id, product_id, sold_on, quantity, price, promotion,
		       competitor_price, economic_index, weather_factor
		FROM sales_records
		WHERE product_id = $1 AND sold_on >= $2
		ORDER BY sold_on ASC`

	var records []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &records, query, productID, since); err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}
	return records, nil
}

// BulkInsert writes records inside a single transaction, skipping duplicates
// on (product_id, sold_on) so repeated imports stay idempotent. It returns
// the number of newly inserted rows.
func (r *salesRepository) BulkInsert(ctx context.Context, records []domain.SalesRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO sales_records (
				product_id, sold_on, quantity, price, promotion,
				competitor_price, economic_index, weather_factor
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (product_id, sold_on) DO NOTHING`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			res, err := stmt.ExecContext(ctx,
				rec.ProductID, rec.SoldOn, rec.Quantity, rec.Price, rec.Promotion,
				rec.CompetitorPrice, rec.EconomicIndex, rec.WeatherFactor)
			if err != nil {
				return fmt.Errorf("failed to insert sales record: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
