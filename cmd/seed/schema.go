package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL DEFAULT '',
		base_cost DOUBLE PRECISION NOT NULL,
		current_price DOUBLE PRECISION NOT NULL,
		min_price DOUBLE PRECISION NOT NULL,
		max_price DOUBLE PRECISION NOT NULL,
		current_stock INTEGER NOT NULL DEFAULT 0,
		reorder_level INTEGER NOT NULL DEFAULT 0,
		max_stock_level INTEGER NOT NULL DEFAULT 0,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		forecasting_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		pricing_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		seasonal_factors JSONB NOT NULL DEFAULT '{}',
		demand_volatility DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		avg_delivery_days INTEGER NOT NULL DEFAULT 0,
		on_time_rate DOUBLE PRECISION NOT NULL DEFAULT 100,
		quality_score DOUBLE PRECISION NOT NULL DEFAULT 10,
		financial_stability DOUBLE PRECISION NOT NULL DEFAULT 1,
		geographic_risk DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_locations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		window_start TEXT NOT NULL DEFAULT '08:00',
		window_end TEXT NOT NULL DEFAULT '18:00',
		max_weight_kg INTEGER NOT NULL DEFAULT 0,
		avg_service_minutes INTEGER NOT NULL DEFAULT 15,
		access_difficulty INTEGER NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_records (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id),
		sold_on DATE NOT NULL,
		quantity INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		promotion BOOLEAN NOT NULL DEFAULT FALSE,
		competitor_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		economic_index DOUBLE PRECISION NOT NULL DEFAULT 0,
		weather_factor DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (product_id, sold_on)
	)`,
	`CREATE TABLE IF NOT EXISTS demand_forecasts (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id),
		forecast_date DATE NOT NULL,
		forecast_type TEXT NOT NULL DEFAULT 'daily',
		predicted_demand INTEGER NOT NULL,
		interval_lower INTEGER NOT NULL DEFAULT 0,
		interval_upper INTEGER NOT NULL DEFAULT 0,
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		seasonal_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		model_version TEXT NOT NULL DEFAULT '',
		algorithm TEXT NOT NULL DEFAULT '',
		training_points INTEGER NOT NULL DEFAULT 0,
		actual_demand INTEGER,
		accuracy_score DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (product_id, forecast_date, forecast_type)
	)`,
	`CREATE TABLE IF NOT EXISTS pricing_recommendations (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id),
		current_price DOUBLE PRECISION NOT NULL,
		recommended_price DOUBLE PRECISION NOT NULL,
		price_change_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		strategy TEXT NOT NULL DEFAULT '',
		inventory_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		demand_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		competition_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		seasonality_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		expected_demand_change DOUBLE PRECISION NOT NULL DEFAULT 0,
		expected_revenue_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_applied BOOLEAN NOT NULL DEFAULT FALSE,
		applied_at TIMESTAMPTZ,
		valid_until TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS route_plans (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		delivery_date DATE NOT NULL,
		start_location_id BIGINT NOT NULL REFERENCES delivery_locations(id),
		total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_time_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		fuel_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		driver_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		algorithm TEXT NOT NULL DEFAULT '',
		optimization_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		cost_savings_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		is_implemented BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS route_stops (
		id BIGSERIAL PRIMARY KEY,
		route_id BIGINT NOT NULL REFERENCES route_plans(id) ON DELETE CASCADE,
		location_id BIGINT NOT NULL REFERENCES delivery_locations(id),
		stop_order INTEGER NOT NULL,
		distance_from_prev_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		travel_minutes INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS risk_alerts (
		id BIGSERIAL PRIMARY KEY,
		alert_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		probability DOUBLE PRECISION NOT NULL DEFAULT 0,
		confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		entity TEXT NOT NULL DEFAULT '',
		factors JSONB NOT NULL DEFAULT '[]',
		recommendations JSONB NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		resolution_notes TEXT NOT NULL DEFAULT '',
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_records_product_sold_on
		ON sales_records (product_id, sold_on)`,
	`CREATE INDEX IF NOT EXISTS idx_demand_forecasts_product_date
		ON demand_forecasts (product_id, forecast_date)`,
	`CREATE INDEX IF NOT EXISTS idx_pricing_recommendations_product
		ON pricing_recommendations (product_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_risk_alerts_status_score
		ON risk_alerts (status, risk_score)`,
}

func runSchema(c *cli.Context) error {
	db := dbFrom(c)

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	log.Printf("schema applied: %d statements", len(schemaStatements))
	return nil
}
