// internal/repository/postgres/analytics_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type analyticsRepository struct {
	db *DB
}

func NewAnalyticsRepository(db *DB) *analyticsRepository {
	return &analyticsRepository{db: db}
}

// Summary aggregates the dashboard counters in one round trip per table.
func (r *analyticsRepository) Summary(ctx context.Context, recentWindow time.Duration) (*domain.AnalyticsSummary, error) {
	var summary domain.AnalyticsSummary

	productQuery := `
		SELECT
			COUNT(*) AS total_products,
			COUNT(*) FILTER (WHERE forecasting_enabled) AS forecasting_enabled,
			COUNT(*) FILTER (WHERE pricing_enabled) AS pricing_enabled,
			COUNT(*) FILTER (WHERE current_stock <= reorder_level) AS low_stock_products
		FROM products`
	if err := r.db.GetContext(ctx, &summary, productQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}

	since := time.Now().Add(-recentWindow)

	if err := r.db.GetContext(ctx, &summary.RecentForecasts,
		`SELECT COUNT(*) FROM demand_forecasts WHERE created_at >= $1`, since); err != nil {
		return nil, fmt.Errorf("failed to count recent forecasts: %w", err)
	}
	if err := r.db.GetContext(ctx, &summary.RecentPricing,
		`SELECT COUNT(*) FROM pricing_recommendations WHERE created_at >= $1`, since); err != nil {
		return nil, fmt.Errorf("failed to count recent pricing recommendations: %w", err)
	}

	if summary.TotalProducts > 0 {
		summary.ForecastingAdoption = float64(summary.ForecastingEnabled) / float64(summary.TotalProducts) * 100
		summary.PricingAdoption = float64(summary.PricingEnabled) / float64(summary.TotalProducts) * 100
	}
	return &summary, nil
}
