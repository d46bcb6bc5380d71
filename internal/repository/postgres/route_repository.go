// internal/repository/postgres/route_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type routeRepository struct {
	db *DB
}

func NewRouteRepository(db *DB) *routeRepository {
	return &routeRepository{db: db}
}

const routeColumns = `
	id, name, delivery_date, start_location_id, total_distance_km,
	total_time_hours, total_cost, fuel_cost, driver_cost, algorithm,
	optimization_seconds, cost_savings_pct, status, is_implemented, created_at`

// Save persists the plan and its stops atomically.
func (r *routeRepository) Save(ctx context.Context, plan *domain.RoutePlan) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO route_plans (
				name, delivery_date, start_location_id, total_distance_km,
				total_time_hours, total_cost, fuel_cost, driver_cost, algorithm,
				optimization_seconds, cost_savings_pct, status, is_implemented, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, NOW())
			RETURNING id, created_at`

		err := tx.QueryRowContext(ctx, query,
			plan.Name, plan.DeliveryDate, plan.StartLocationID, plan.TotalDistanceKm,
			plan.TotalTimeHours, plan.TotalCost, plan.FuelCost, plan.DriverCost,
			plan.Algorithm, plan.OptimizationSeconds, plan.CostSavingsPct, plan.Status,
		).Scan(&plan.ID, &plan.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save route plan: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO route_stops (
				route_id, location_id, stop_order, distance_from_prev_km, travel_minutes
			) VALUES ($1, $2, $3, $4, $5)
			RETURNING id`)
		if err != nil {
			return fmt.Errorf("failed to prepare stop insert: %w", err)
		}
		defer stmt.Close()

		for i := range plan.Stops {
			stop := &plan.Stops[i]
			stop.RouteID = plan.ID
			if err := stmt.QueryRowContext(ctx,
				plan.ID, stop.LocationID, stop.StopOrder,
				stop.DistanceFromPrevKm, stop.TravelMinutes,
			).Scan(&stop.ID); err != nil {
				return fmt.Errorf("failed to save route stop: %w", err)
			}
		}
		return nil
	})
}

func (r *routeRepository) List(ctx context.Context, limit int) ([]*domain.RoutePlan, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT ` + routeColumns + `
		FROM route_plans
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var plans []*domain.RoutePlan
	if err := r.db.SelectContext(ctx, &plans, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list route plans: %w", err)
	}
	return plans, nil
}

func (r *routeRepository) GetByID(ctx context.Context, id int64) (*domain.RoutePlan, error) {
	var plan domain.RoutePlan
	err := r.db.GetContext(ctx, &plan,
		`SELECT `+routeColumns+` FROM route_plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route plan %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route plan: %w", err)
	}

	stopsQuery := `
		SELECT id, route_id, location_id, stop_order, distance_from_prev_km, travel_minutes
		FROM route_stops
		WHERE route_id = $1
		ORDER BY stop_order ASC`
	if err := r.db.SelectContext(ctx, &plan.Stops, stopsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to load route stops: %w", err)
	}
	return &plan, nil
}

func (r *routeRepository) MarkImplemented(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE route_plans
		SET is_implemented = TRUE, status = 'implemented'
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark route implemented: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("route plan %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *routeRepository) RecentPlans(ctx context.Context, since time.Time) ([]domain.RoutePlan, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM route_plans
		WHERE created_at >= $1
		ORDER BY created_at DESC`

	var plans []domain.RoutePlan
	if err := r.db.SelectContext(ctx, &plans, query, since); err != nil {
		return nil, fmt.Errorf("failed to load recent route plans: %w", err)
	}
	return plans, nil
}

func (r *routeRepository) SavingsReport(ctx context.Context) (*domain.RouteSavingsReport, error) {
	query := `
		SELECT
			COUNT(*) AS implemented_routes,
			COALESCE(SUM(total_cost), 0) AS total_cost,
			COALESCE(SUM(total_distance_km), 0) AS total_distance_km,
			COALESCE(AVG(cost_savings_pct), 0) AS avg_savings_pct
		FROM route_plans
		WHERE is_implemented = TRUE`

	var report domain.RouteSavingsReport
	if err := r.db.GetContext(ctx, &report, query); err != nil {
		return nil, fmt.Errorf("failed to build savings report: %w", err)
	}
	return &report, nil
}
