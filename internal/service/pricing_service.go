// internal/service/pricing_service.go
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/chainopt/internal/cache"
	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/pricing"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/rs/zerolog/log"
)

// recommendationValidity is how long a saved recommendation can still be applied.
const recommendationValidity = 7 * 24 * time.Hour

type PricingService struct {
	products  repository.ProductRepository
	pricing   repository.PricingRepository
	analytics cache.AnalyticsCache
	advisor   *pricing.Advisor
	now       func() time.Time
}

func NewPricingService(
	products repository.ProductRepository,
	pricingRepo repository.PricingRepository,
	analytics cache.AnalyticsCache,
	advisor *pricing.Advisor,
) *PricingService {
	return &PricingService{
		products:  products,
		pricing:   pricingRepo,
		analytics: analytics,
		advisor:   advisor,
		now:       time.Now,
	}
}

// Recommend computes and persists a price recommendation for the product.
func (s *PricingService) Recommend(ctx context.Context, productID int64, market domain.MarketConditions) (*domain.PricingRecommendation, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.PricingEnabled {
		return nil, pricing.ErrPricingDisabled
	}

	rec := s.advisor.Recommend(*product, market, s.now())

	saved := &domain.PricingRecommendation{
		ProductID:             product.ID,
		CurrentPrice:          product.CurrentPrice,
		RecommendedPrice:      rec.RecommendedPrice,
		PriceChangePct:        rec.PriceChangePct,
		Strategy:              rec.Strategy,
		InventoryFactor:       rec.Factors.Inventory,
		DemandFactor:          rec.Factors.Demand,
		CompetitionFactor:     rec.Factors.Competition,
		SeasonalityFactor:     rec.Factors.Seasonality,
		ExpectedDemandChange:  rec.ExpectedDemandChange,
		ExpectedRevenueImpact: rec.ExpectedRevenueImpact,
		ConfidenceScore:       rec.ConfidenceScore,
		ValidUntil:            s.now().Add(recommendationValidity),
	}
	if err := s.pricing.Save(ctx, saved); err != nil {
		return nil, err
	}

	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}

	log.Info().
		Int64("product_id", product.ID).
		Str("strategy", saved.Strategy).
		Float64("recommended_price", saved.RecommendedPrice).
		Msg("pricing recommendation created")
	return saved, nil
}

// Apply moves the product's price to the recommended one.
func (s *PricingService) Apply(ctx context.Context, recommendationID int64) (*domain.PricingRecommendation, error) {
	rec, err := s.pricing.Apply(ctx, recommendationID)
	if err != nil {
		return nil, err
	}
	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
	return rec, nil
}

func (s *PricingService) List(ctx context.Context, productID int64, limit int) ([]*domain.PricingRecommendation, error) {
	return s.pricing.List(ctx, productID, limit)
}

func (s *PricingService) RevenueImpactReport(ctx context.Context) (*domain.RevenueImpactReport, error) {
	var report domain.RevenueImpactReport
	found, err := s.analytics.GetReport(ctx, "revenue_impact", &report)
	if err != nil {
		log.Warn().Err(err).Msg("analytics cache read failed")
	}
	if found {
		return &report, nil
	}

	fresh, err := s.pricing.RevenueImpactReport(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.analytics.SetReport(ctx, "revenue_impact", fresh); err != nil {
		log.Warn().Err(err).Msg("analytics cache write failed")
	}
	return fresh, nil
}
