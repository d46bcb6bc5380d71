// internal/domain/models.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SeasonalFactors maps month (1-12) to a demand multiplier. Stored as JSONB.
type SeasonalFactors map[int]float64

// Factor returns the multiplier for the given month, defaulting to 1.0.
func (sf SeasonalFactors) Factor(month time.Month) float64 {
	if sf == nil {
		return 1.0
	}
	if f, ok := sf[int(month)]; ok {
		return f
	}
	return 1.0
}

func (sf SeasonalFactors) Value() (driver.Value, error) {
	if sf == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(sf)
}

func (sf *SeasonalFactors) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*sf = nil
		return nil
	case []byte:
		return json.Unmarshal(v, sf)
	case string:
		return json.Unmarshal([]byte(v), sf)
	default:
		return fmt.Errorf("cannot scan %T into SeasonalFactors", src)
	}
}

// StringList is a JSONB-backed string slice used for alert factors and recommendations.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Product is the catalog entry the optimization services operate on.
type Product struct {
	ID                 int64           `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	SKU                string          `json:"sku" db:"sku"`
	Category           string          `json:"category" db:"category"`
	BaseCost           float64         `json:"base_cost" db:"base_cost"`
	CurrentPrice       float64         `json:"current_price" db:"current_price"`
	MinPrice           float64         `json:"min_price" db:"min_price"`
	MaxPrice           float64         `json:"max_price" db:"max_price"`
	CurrentStock       int             `json:"current_stock" db:"current_stock"`
	ReorderLevel       int             `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel      int             `json:"max_stock_level" db:"max_stock_level"`
	WeightKg           float64         `json:"weight_kg" db:"weight_kg"`
	ForecastingEnabled bool            `json:"forecasting_enabled" db:"forecasting_enabled"`
	PricingEnabled     bool            `json:"pricing_enabled" db:"pricing_enabled"`
	SeasonalFactors    SeasonalFactors `json:"seasonal_factors" db:"seasonal_factors"`
	DemandVolatility   float64         `json:"demand_volatility" db:"demand_volatility"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// Supplier carries the delivery and stability scores the risk assessor reads.
type Supplier struct {
	ID                 int64     `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Code               string    `json:"code" db:"code"`
	City               string    `json:"city" db:"city"`
	Country            string    `json:"country" db:"country"`
	AvgDeliveryDays    int       `json:"avg_delivery_days" db:"avg_delivery_days"`
	OnTimeRate         float64   `json:"on_time_rate" db:"on_time_rate"`
	QualityScore       float64   `json:"quality_score" db:"quality_score"`
	FinancialStability float64   `json:"financial_stability" db:"financial_stability"`
	GeographicRisk     float64   `json:"geographic_risk" db:"geographic_risk"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// DeliveryLocation is immutable reference data for route computation.
type DeliveryLocation struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Address           string    `json:"address" db:"address"`
	Latitude          float64   `json:"latitude" db:"latitude"`
	Longitude         float64   `json:"longitude" db:"longitude"`
	WindowStart       string    `json:"window_start" db:"window_start"`
	WindowEnd         string    `json:"window_end" db:"window_end"`
	MaxWeightKg       int       `json:"max_weight_kg" db:"max_weight_kg"`
	AvgServiceMinutes int       `json:"avg_service_minutes" db:"avg_service_minutes"`
	AccessDifficulty  int       `json:"access_difficulty" db:"access_difficulty"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// SalesRecord is one day of observed demand for a product.
type SalesRecord struct {
	ID              int64     `json:"id" db:"id"`
	ProductID       int64     `json:"product_id" db:"product_id"`
	SoldOn          time.Time `json:"sold_on" db:"sold_on"`
	Quantity        int       `json:"quantity" db:"quantity"`
	Price           float64   `json:"price" db:"price"`
	Promotion       bool      `json:"promotion" db:"promotion"`
	CompetitorPrice float64   `json:"competitor_price" db:"competitor_price"`
	EconomicIndex   float64   `json:"economic_index" db:"economic_index"`
	WeatherFactor   float64   `json:"weather_factor" db:"weather_factor"`
}

// DemandForecast is created once per forecast request. ActualDemand and
// AccuracyScore are attached later for accuracy scoring; nothing else mutates.
type DemandForecast struct {
	ID              int64      `json:"id" db:"id"`
	ProductID       int64      `json:"product_id" db:"product_id"`
	ForecastDate    time.Time  `json:"forecast_date" db:"forecast_date"`
	ForecastType    string     `json:"forecast_type" db:"forecast_type"`
	PredictedDemand int        `json:"predicted_demand" db:"predicted_demand"`
	IntervalLower   int        `json:"confidence_interval_lower" db:"interval_lower"`
	IntervalUpper   int        `json:"confidence_interval_upper" db:"interval_upper"`
	ConfidenceScore float64    `json:"confidence_score" db:"confidence_score"`
	SeasonalFactor  float64    `json:"seasonal_factor" db:"seasonal_factor"`
	ModelVersion    string     `json:"model_version" db:"model_version"`
	Algorithm       string     `json:"algorithm" db:"algorithm"`
	TrainingPoints  int        `json:"training_points" db:"training_points"`
	ActualDemand    *int       `json:"actual_demand,omitempty" db:"actual_demand"`
	AccuracyScore   *float64   `json:"accuracy_score,omitempty" db:"accuracy_score"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// PricingRecommendation is created per advisory call; Apply marks it applied
// and mutates the owning product's current price.
type PricingRecommendation struct {
	ID                    int64      `json:"id" db:"id"`
	ProductID             int64      `json:"product_id" db:"product_id"`
	CurrentPrice          float64    `json:"current_price" db:"current_price"`
	RecommendedPrice      float64    `json:"recommended_price" db:"recommended_price"`
	PriceChangePct        float64    `json:"price_change_percentage" db:"price_change_pct"`
	Strategy              string     `json:"pricing_strategy" db:"strategy"`
	InventoryFactor       float64    `json:"inventory_factor" db:"inventory_factor"`
	DemandFactor          float64    `json:"demand_factor" db:"demand_factor"`
	CompetitionFactor     float64    `json:"competition_factor" db:"competition_factor"`
	SeasonalityFactor     float64    `json:"seasonality_factor" db:"seasonality_factor"`
	ExpectedDemandChange  float64    `json:"expected_demand_change" db:"expected_demand_change"`
	ExpectedRevenueImpact float64    `json:"expected_revenue_impact" db:"expected_revenue_impact"`
	ConfidenceScore       float64    `json:"confidence_score" db:"confidence_score"`
	IsApplied             bool       `json:"is_applied" db:"is_applied"`
	AppliedAt             *time.Time `json:"applied_at,omitempty" db:"applied_at"`
	ValidUntil            time.Time  `json:"valid_until" db:"valid_until"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
}

// RoutePlan is the persisted result of one optimization call.
type RoutePlan struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	DeliveryDate        time.Time `json:"delivery_date" db:"delivery_date"`
	StartLocationID     int64     `json:"start_location_id" db:"start_location_id"`
	TotalDistanceKm     float64   `json:"total_distance_km" db:"total_distance_km"`
	TotalTimeHours      float64   `json:"total_time_hours" db:"total_time_hours"`
	TotalCost           float64   `json:"total_cost" db:"total_cost"`
	FuelCost            float64   `json:"fuel_cost" db:"fuel_cost"`
	DriverCost          float64   `json:"driver_cost" db:"driver_cost"`
	Algorithm           string    `json:"algorithm_used" db:"algorithm"`
	OptimizationSeconds float64   `json:"optimization_time_seconds" db:"optimization_seconds"`
	CostSavingsPct      float64   `json:"cost_savings_percentage" db:"cost_savings_pct"`
	Status              string    `json:"status" db:"status"`
	IsImplemented       bool      `json:"is_implemented" db:"is_implemented"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	Stops []RouteStop `json:"stops,omitempty" db:"-"`
}

// RouteStop is a single visit in an optimized route.
type RouteStop struct {
	ID                 int64   `json:"id" db:"id"`
	RouteID            int64   `json:"route_id" db:"route_id"`
	LocationID         int64   `json:"location_id" db:"location_id"`
	StopOrder          int     `json:"stop_order" db:"stop_order"`
	DistanceFromPrevKm float64 `json:"distance_from_previous_km" db:"distance_from_prev_km"`
	TravelMinutes      int     `json:"travel_time_from_previous_minutes" db:"travel_minutes"`
}

// RiskAlert is produced by the risk assessor.
type RiskAlert struct {
	ID              int64      `json:"id" db:"id"`
	AlertType       string     `json:"alert_type" db:"alert_type"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	RiskScore       float64    `json:"risk_score" db:"risk_score"`
	Probability     float64    `json:"probability" db:"probability"`
	ConfidenceScore float64    `json:"confidence_score" db:"confidence_score"`
	Entity          string     `json:"affected_entity" db:"entity"`
	Factors         StringList `json:"factors" db:"factors"`
	Recommendations StringList `json:"recommendations" db:"recommendations"`
	Status          string     `json:"status" db:"status"`
	ResolutionNotes string     `json:"resolution_notes" db:"resolution_notes"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// MarketConditions are optional overrides callers can supply to the pricing advisor.
type MarketConditions struct {
	DemandTrend        *float64 `json:"demand_trend,omitempty"`
	CompetitorAvgPrice *float64 `json:"competitor_avg_price,omitempty"`
	MarketStability    *float64 `json:"market_stability,omitempty"`
}

// ExternalFactors are optional overrides for a single forecast request.
type ExternalFactors struct {
	Price             *float64 `json:"price,omitempty"`
	StockLevel        *float64 `json:"stock_level,omitempty"`
	Promotion         *bool    `json:"promotion_active,omitempty"`
	CompetitorPrice   *float64 `json:"competitor_price,omitempty"`
	EconomicIndicator *float64 `json:"economic_indicator,omitempty"`
	WeatherFactor     *float64 `json:"weather_factor,omitempty"`
}

// ProductFilter selects products in list queries.
type ProductFilter struct {
	Category           string `json:"category"`
	Search             string `json:"search"`
	ForecastingEnabled *bool  `json:"forecasting_enabled"`
	PricingEnabled     *bool  `json:"pricing_enabled"`
	Page               int    `json:"page"`
	PageSize           int    `json:"page_size"`
}

// AnalyticsSummary is the aggregated dashboard payload.
type AnalyticsSummary struct {
	TotalProducts       int     `json:"total_products" db:"total_products"`
	ForecastingEnabled  int     `json:"forecasting_enabled" db:"forecasting_enabled"`
	PricingEnabled      int     `json:"pricing_enabled" db:"pricing_enabled"`
	LowStockProducts    int     `json:"low_stock_products" db:"low_stock_products"`
	RecentForecasts     int     `json:"recent_forecasts" db:"-"`
	RecentPricing       int     `json:"recent_pricing_recommendations" db:"-"`
	ForecastingAdoption float64 `json:"forecasting_adoption_rate" db:"-"`
	PricingAdoption     float64 `json:"pricing_adoption_rate" db:"-"`
}

// ForecastAccuracyReport summarizes scored forecasts.
type ForecastAccuracyReport struct {
	TotalForecasts  int     `json:"total_forecasts" db:"total_forecasts"`
	ScoredForecasts int     `json:"scored_forecasts" db:"scored_forecasts"`
	AvgAccuracy     float64 `json:"average_accuracy" db:"avg_accuracy"`
	AvgConfidence   float64 `json:"average_confidence" db:"avg_confidence"`
}

// RouteSavingsReport summarizes implemented routes.
type RouteSavingsReport struct {
	ImplementedRoutes int     `json:"total_implemented_routes" db:"implemented_routes"`
	TotalCost         float64 `json:"total_cost" db:"total_cost"`
	TotalDistanceKm   float64 `json:"total_distance_optimized" db:"total_distance_km"`
	AvgSavingsPct     float64 `json:"average_savings_percentage" db:"avg_savings_pct"`
}

// RevenueImpactReport summarizes applied pricing recommendations.
type RevenueImpactReport struct {
	TotalRecommendations int     `json:"total_recommendations" db:"total_recommendations"`
	AppliedCount         int     `json:"applied_count" db:"applied_count"`
	AvgPriceChangePct    float64 `json:"average_price_change_pct" db:"avg_price_change_pct"`
	AvgRevenueImpact     float64 `json:"average_revenue_impact" db:"avg_revenue_impact"`
}
