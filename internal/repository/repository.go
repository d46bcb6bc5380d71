// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type ProductRepository interface {
	List(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	UpdateStock(ctx context.Context, id int64, stock int) error
}

type SupplierRepository interface {
	ListActive(ctx context.Context) ([]*domain.Supplier, error)
	Create(ctx context.Context, supplier *domain.Supplier) error
}

type LocationRepository interface {
	ListActive(ctx context.Context) ([]*domain.DeliveryLocation, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.DeliveryLocation, error)
	Create(ctx context.Context, location *domain.DeliveryLocation) error
}

type SalesRepository interface {
	History(ctx context.Context, productID int64, since time.Time) ([]domain.SalesRecord, error)
	BulkInsert(ctx context.Context, records []domain.SalesRecord) (int, error)
}

type ForecastRepository interface {
	Save(ctx context.Context, forecast *domain.DemandForecast) error
	List(ctx context.Context, productID int64, limit int) ([]*domain.DemandForecast, error)
	GetByID(ctx context.Context, id int64) (*domain.DemandForecast, error)
	AttachActual(ctx context.Context, id int64, actual int) (*domain.DemandForecast, error)
	UpcomingDemand(ctx context.Context, from time.Time, days int) (map[int64]int, error)
	AccuracyReport(ctx context.Context) (*domain.ForecastAccuracyReport, error)
}

type PricingRepository interface {
	Save(ctx context.Context, rec *domain.PricingRecommendation) error
	List(ctx context.Context, productID int64, limit int) ([]*domain.PricingRecommendation, error)
	GetByID(ctx context.Context, id int64) (*domain.PricingRecommendation, error)
	Apply(ctx context.Context, id int64) (*domain.PricingRecommendation, error)
	RevenueImpactReport(ctx context.Context) (*domain.RevenueImpactReport, error)
}

type RouteRepository interface {
	Save(ctx context.Context, plan *domain.RoutePlan) error
	List(ctx context.Context, limit int) ([]*domain.RoutePlan, error)
	GetByID(ctx context.Context, id int64) (*domain.RoutePlan, error)
	MarkImplemented(ctx context.Context, id int64) error
	RecentPlans(ctx context.Context, since time.Time) ([]domain.RoutePlan, error)
	SavingsReport(ctx context.Context) (*domain.RouteSavingsReport, error)
}

type RiskRepository interface {
	SaveAlerts(ctx context.Context, alerts []domain.RiskAlert) ([]domain.RiskAlert, error)
	ListAlerts(ctx context.Context, status string, limit int) ([]*domain.RiskAlert, error)
	Resolve(ctx context.Context, id int64, notes string) (*domain.RiskAlert, error)
}

type AnalyticsRepository interface {
	Summary(ctx context.Context, recentWindow time.Duration) (*domain.AnalyticsSummary, error)
}
