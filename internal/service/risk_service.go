// internal/service/risk_service.go
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/andresuchdata/chainopt/internal/risk"
	"github.com/rs/zerolog/log"
)

// shortageLookaheadDays is the forecast window feeding the stock-shortage rule.
const shortageLookaheadDays = 7

// routeLookbackDays is how far back the logistics-efficiency rule looks.
const routeLookbackDays = 30

type RiskService struct {
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	forecasts repository.ForecastRepository
	routes    repository.RouteRepository
	locations repository.LocationRepository
	risks     repository.RiskRepository
	assessor  *risk.Assessor
}

func NewRiskService(
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	forecasts repository.ForecastRepository,
	routes repository.RouteRepository,
	locations repository.LocationRepository,
	risks repository.RiskRepository,
	assessor *risk.Assessor,
) *RiskService {
	return &RiskService{
		suppliers: suppliers,
		products:  products,
		forecasts: forecasts,
		routes:    routes,
		locations: locations,
		risks:     risks,
		assessor:  assessor,
	}
}

// Assess loads the current snapshot, runs every rule and persists the
// resulting alerts.
func (s *RiskService) Assess(ctx context.Context) ([]domain.RiskAlert, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	alerts := s.assessor.Assess(snap)
	if len(alerts) == 0 {
		return nil, nil
	}

	saved, err := s.risks.SaveAlerts(ctx, alerts)
	if err != nil {
		return nil, err
	}

	log.Info().Int("alerts", len(saved)).Msg("risk assessment completed")
	return saved, nil
}

func (s *RiskService) loadSnapshot(ctx context.Context) (risk.Snapshot, error) {
	var snap risk.Snapshot

	suppliers, err := s.suppliers.ListActive(ctx)
	if err != nil {
		return snap, err
	}
	for _, sup := range suppliers {
		snap.Suppliers = append(snap.Suppliers, *sup)
	}

	products, _, err := s.products.List(ctx, &domain.ProductFilter{PageSize: 200})
	if err != nil {
		return snap, err
	}
	for _, p := range products {
		snap.Products = append(snap.Products, *p)
	}

	snap.UpcomingDemand, err = s.forecasts.UpcomingDemand(ctx, time.Now(), shortageLookaheadDays)
	if err != nil {
		return snap, err
	}

	snap.RecentRoutes, err = s.routes.RecentPlans(ctx, time.Now().AddDate(0, 0, -routeLookbackDays))
	if err != nil {
		return snap, err
	}

	locations, err := s.locations.ListActive(ctx)
	if err != nil {
		return snap, err
	}
	for _, l := range locations {
		snap.Locations = append(snap.Locations, *l)
	}

	return snap, nil
}

func (s *RiskService) ListAlerts(ctx context.Context, status string, limit int) ([]*domain.RiskAlert, error) {
	return s.risks.ListAlerts(ctx, status, limit)
}

func (s *RiskService) Resolve(ctx context.Context, id int64, notes string) (*domain.RiskAlert, error) {
	return s.risks.Resolve(ctx, id, notes)
}

func (s *RiskService) PredictDisruption(riskType string, horizonDays int) risk.DisruptionEstimate {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return s.assessor.PredictDisruption(riskType, horizonDays)
}
