// internal/service/route_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/cache"
	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/andresuchdata/chainopt/internal/routing"
	"github.com/andresuchdata/chainopt/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrMissingDepot is returned when an optimization request has no start location.
var ErrMissingDepot = errors.New("start location is required")

// OptimizeRequest describes one route optimization call.
type OptimizeRequest struct {
	Name            string    `json:"name"`
	DeliveryDate    time.Time `json:"delivery_date"`
	StartLocationID int64     `json:"start_location_id"`
	StopLocationIDs []int64   `json:"stop_location_ids"`
}

type RouteService struct {
	locations repository.LocationRepository
	routes    repository.RouteRepository
	analytics cache.AnalyticsCache
	optimizer *routing.Optimizer
	exports   storage.ObjectStorage // nil when exports are disabled
}

func NewRouteService(
	locations repository.LocationRepository,
	routes repository.RouteRepository,
	analytics cache.AnalyticsCache,
	optimizer *routing.Optimizer,
	exports storage.ObjectStorage,
) *RouteService {
	return &RouteService{
		locations: locations,
		routes:    routes,
		analytics: analytics,
		optimizer: optimizer,
		exports:   exports,
	}
}

// Optimize computes a route over the requested locations, persists the plan
// with its stops and archives a manifest when exports are configured.
func (s *RouteService) Optimize(ctx context.Context, req OptimizeRequest) (*domain.RoutePlan, error) {
	if req.StartLocationID == 0 {
		return nil, ErrMissingDepot
	}
	if len(req.StopLocationIDs) == 0 {
		return nil, routing.ErrNoStops
	}

	ids := append([]int64{req.StartLocationID}, req.StopLocationIDs...)
	locations, err := s.locations.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	depot := *locations[0]
	stops := make([]domain.DeliveryLocation, 0, len(locations)-1)
	for _, l := range locations[1:] {
		stops = append(stops, *l)
	}

	result, err := s.optimizer.Optimize(ctx, depot, stops)
	if err != nil {
		return nil, err
	}

	plan := &domain.RoutePlan{
		Name:                req.Name,
		DeliveryDate:        req.DeliveryDate,
		StartLocationID:     depot.ID,
		TotalDistanceKm:     result.TotalDistanceKm,
		TotalTimeHours:      result.TotalTimeHours,
		TotalCost:           result.TotalCost,
		FuelCost:            result.FuelCost,
		DriverCost:          result.DriverCost,
		Algorithm:           result.Algorithm,
		OptimizationSeconds: result.OptimizationSeconds,
		CostSavingsPct:      result.CostSavingsPct,
		Status:              "planned",
	}
	if plan.Name == "" {
		plan.Name = fmt.Sprintf("Route %s", plan.DeliveryDate.Format("2006-01-02"))
	}

	// Result indices point into depot+stops; skip index 0 (the depot itself).
	for i, leg := range result.Legs {
		plan.Stops = append(plan.Stops, domain.RouteStop{
			LocationID:         locations[leg.ToIndex].ID,
			StopOrder:          i + 1,
			DistanceFromPrevKm: leg.DistanceKm,
			TravelMinutes:      leg.TravelMinutes,
		})
	}

	if err := s.routes.Save(ctx, plan); err != nil {
		return nil, err
	}

	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}

	s.exportManifest(ctx, plan)

	log.Info().
		Int64("route_id", plan.ID).
		Str("algorithm", plan.Algorithm).
		Float64("total_distance_km", plan.TotalDistanceKm).
		Float64("cost_savings_pct", plan.CostSavingsPct).
		Msg("route optimized")
	return plan, nil
}

// exportManifest archives the plan as JSON. Export failures never fail the
// optimization itself.
func (s *RouteService) exportManifest(ctx context.Context, plan *domain.RoutePlan) {
	if s.exports == nil {
		return
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		log.Warn().Err(err).Int64("route_id", plan.ID).Msg("failed to encode route manifest")
		return
	}

	key := fmt.Sprintf("routes/%s/route-%d.json", plan.DeliveryDate.Format("2006-01-02"), plan.ID)
	if err := s.exports.UploadObject(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to upload route manifest")
	}
}

func (s *RouteService) ListLocations(ctx context.Context) ([]*domain.DeliveryLocation, error) {
	return s.locations.ListActive(ctx)
}

func (s *RouteService) CreateLocation(ctx context.Context, location *domain.DeliveryLocation) error {
	return s.locations.Create(ctx, location)
}

func (s *RouteService) Get(ctx context.Context, id int64) (*domain.RoutePlan, error) {
	return s.routes.GetByID(ctx, id)
}

func (s *RouteService) List(ctx context.Context, limit int) ([]*domain.RoutePlan, error) {
	return s.routes.List(ctx, limit)
}

func (s *RouteService) MarkImplemented(ctx context.Context, id int64) error {
	if err := s.routes.MarkImplemented(ctx, id); err != nil {
		return err
	}
	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
	return nil
}

func (s *RouteService) SavingsReport(ctx context.Context) (*domain.RouteSavingsReport, error) {
	var report domain.RouteSavingsReport
	found, err := s.analytics.GetReport(ctx, "route_savings", &report)
	if err != nil {
		log.Warn().Err(err).Msg("analytics cache read failed")
	}
	if found {
		return &report, nil
	}

	fresh, err := s.routes.SavingsReport(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.analytics.SetReport(ctx, "route_savings", fresh); err != nil {
		log.Warn().Err(err).Msg("analytics cache write failed")
	}
	return fresh, nil
}
