// internal/repository/postgres/pricing_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type pricingRepository struct {
	db *DB
}

func NewPricingRepository(db *DB) *pricingRepository {
	return &pricingRepository{db: db}
}

const pricingColumns = `
	id, product_id, current_price, recommended_price, price_change_pct,
	strategy, inventory_factor, demand_factor, competition_factor,
	seasonality_factor, expected_demand_change, expected_revenue_impact,
	confidence_score, is_applied, applied_at, valid_until, created_at`

func (r *pricingRepository) Save(ctx context.Context, rec *domain.PricingRecommendation) error {
	query := `
		INSERT INTO pricing_recommendations (
			product_id, current_price, recommended_price, price_change_pct,
			strategy, inventory_factor, demand_factor, competition_factor,
			seasonality_factor, expected_demand_change, expected_revenue_impact,
			confidence_score, is_applied, valid_until, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		rec.ProductID, rec.CurrentPrice, rec.RecommendedPrice, rec.PriceChangePct,
		rec.Strategy, rec.InventoryFactor, rec.DemandFactor, rec.CompetitionFactor,
		rec.SeasonalityFactor, rec.ExpectedDemandChange, rec.ExpectedRevenueImpact,
		rec.ConfidenceScore, rec.ValidUntil,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save pricing recommendation: %w", err)
	}
	return nil
}

func (r *pricingRepository) List(ctx context.Context, productID int64, limit int) ([]*domain.PricingRecommendation, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT ` + pricingColumns + `
		FROM pricing_recommendations
		WHERE ($1 = 0 OR product_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	var recs []*domain.PricingRecommendation
	if err := r.db.SelectContext(ctx, &recs, query, productID, limit); err != nil {
		return nil, fmt.Errorf("failed to list pricing recommendations: %w", err)
	}
	return recs, nil
}

func (r *pricingRepository) GetByID(ctx context.Context, id int64) (*domain.PricingRecommendation, error) {
	var rec domain.PricingRecommendation
	err := r.db.GetContext(ctx, &rec,
		`SELECT `+pricingColumns+` FROM pricing_recommendations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pricing recommendation %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing recommendation: %w", err)
	}
	return &rec, nil
}

// Apply marks the recommendation applied and moves the product's current
// price to the recommended one, both inside a single transaction.
func (r *pricingRepository) Apply(ctx context.Context, id int64) (*domain.PricingRecommendation, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsApplied {
		return nil, fmt.Errorf("pricing recommendation %d: %w", id, domain.ErrAlreadyApplied)
	}
	if time.Now().After(rec.ValidUntil) {
		return nil, fmt.Errorf("pricing recommendation %d: %w", id, domain.ErrExpired)
	}

	now := time.Now()
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE pricing_recommendations
			SET is_applied = TRUE, applied_at = $2
			WHERE id = $1 AND is_applied = FALSE`, id, now)
		if err != nil {
			return fmt.Errorf("failed to mark recommendation applied: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("pricing recommendation %d: %w", id, domain.ErrAlreadyApplied)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET current_price = $2, updated_at = $3
			WHERE id = $1`, rec.ProductID, rec.RecommendedPrice, now)
		if err != nil {
			return fmt.Errorf("failed to update product price: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec.IsApplied = true
	rec.AppliedAt = &now
	return rec, nil
}

func (r *pricingRepository) RevenueImpactReport(ctx context.Context) (*domain.RevenueImpactReport, error) {
	query := `
		SELECT
			COUNT(*) AS total_recommendations,
			COUNT(*) FILTER (WHERE is_applied) AS applied_count,
			COALESCE(AVG(price_change_pct) FILTER (WHERE is_applied), 0) AS avg_price_change_pct,
			COALESCE(AVG(expected_revenue_impact) FILTER (WHERE is_applied), 0) AS avg_revenue_impact
		FROM pricing_recommendations`

	var report domain.RevenueImpactReport
	if err := r.db.GetContext(ctx, &report, query); err != nil {
		return nil, fmt.Errorf("failed to build revenue impact report: %w", err)
	}
	return &report, nil
}
