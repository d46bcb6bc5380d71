// internal/repository/postgres/forecast_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) *forecastRepository {
	return &forecastRepository{db: db}
}

const forecastColumns = `
	id, product_id, forecast_date, forecast_type, predicted_demand,
	interval_lower, interval_upper, confidence_score, seasonal_factor,
	model_version, algorithm, training_points, actual_demand, accuracy_score,
	created_at`

func (r *forecastRepository) Save(ctx context.Context, f *domain.DemandForecast) error {
	query := `
		INSERT INTO demand_forecasts (
			product_id, forecast_date, forecast_type, predicted_demand,
			interval_lower, interval_upper, confidence_score, seasonal_factor,
			model_version, algorithm, training_points, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (product_id, forecast_date, forecast_type)
		DO UPDATE SET
			predicted_demand = EXCLUDED.predicted_demand,
			interval_lower = EXCLUDED.interval_lower,
			interval_upper = EXCLUDED.interval_upper,
			confidence_score = EXCLUDED.confidence_score,
			seasonal_factor = EXCLUDED.seasonal_factor,
			model_version = EXCLUDED.model_version,
			algorithm = EXCLUDED.algorithm,
			training_points = EXCLUDED.training_points
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ProductID, f.ForecastDate, f.ForecastType, f.PredictedDemand,
		f.IntervalLower, f.IntervalUpper, f.ConfidenceScore, f.SeasonalFactor,
		f.ModelVersion, f.Algorithm, f.TrainingPoints,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save forecast: %w", err)
	}
	return nil
}

func (r *forecastRepository) List(ctx context.Context, productID int64, limit int) ([]*domain.DemandForecast, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT ` + forecastColumns + `
		FROM demand_forecasts
		WHERE ($1 = 0 OR product_id = $1)
		ORDER BY forecast_date DESC, id DESC
		LIMIT $2`

	var forecasts []*domain.DemandForecast
	if err := r.db.SelectContext(ctx, &forecasts, query, productID, limit); err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	return forecasts, nil
}

func (r *forecastRepository) GetByID(ctx context.Context, id int64) (*domain.DemandForecast, error) {
	var f domain.DemandForecast
	err := r.db.GetContext(ctx, &f,
		`SELECT `+forecastColumns+` FROM demand_forecasts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("forecast %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}
	return &f, nil
}

// AttachActual records the observed demand and scores the forecast:
// 1 - |actual - predicted| / max(actual, predicted), floored at 0.
func (r *forecastRepository) AttachActual(ctx context.Context, id int64, actual int) (*domain.DemandForecast, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	accuracy := accuracyScore(f.PredictedDemand, actual)

	query := `
		UPDATE demand_forecasts
		SET actual_demand = $2, accuracy_score = $3
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, actual, accuracy); err != nil {
		return nil, fmt.Errorf("failed to attach actual demand: %w", err)
	}

	f.ActualDemand = &actual
	f.AccuracyScore = &accuracy
	return f, nil
}

func accuracyScore(predicted, actual int) float64 {
	denom := math.Max(float64(actual), float64(predicted))
	if denom == 0 {
		return 1.0
	}
	score := 1.0 - math.Abs(float64(actual)-float64(predicted))/denom
	if score < 0 {
		score = 0
	}
	return score
}

// UpcomingDemand sums predicted demand per product over the next `days`
// forecast dates, feeding the stock-shortage risk rule.
func (r *forecastRepository) UpcomingDemand(ctx context.Context, from time.Time, days int) (map[int64]int, error) {
	query := `
		SELECT product_id, COALESCE(SUM(predicted_demand), 0) AS total
		FROM demand_forecasts
		WHERE forecast_date >= $1 AND forecast_date < $2
		GROUP BY product_id`

	rows, err := r.db.QueryxContext(ctx, query, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming demand: %w", err)
	}
	defer rows.Close()

	demand := make(map[int64]int)
	for rows.Next() {
		var productID int64
		var total int
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming demand: %w", err)
		}
		demand[productID] = total
	}
	return demand, rows.Err()
}

func (r *forecastRepository) AccuracyReport(ctx context.Context) (*domain.ForecastAccuracyReport, error) {
	query := `
		SELECT
			COUNT(*) AS total_forecasts,
			COUNT(accuracy_score) AS scored_forecasts,
			COALESCE(AVG(accuracy_score), 0) AS avg_accuracy,
			COALESCE(AVG(confidence_score), 0) AS avg_confidence
		FROM demand_forecasts`

	var report domain.ForecastAccuracyReport
	if err := r.db.GetContext(ctx, &report, query); err != nil {
		return nil, fmt.Errorf("failed to build accuracy report: %w", err)
	}
	return &report, nil
}
