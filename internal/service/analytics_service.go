// internal/service/analytics_service.go
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/chainopt/internal/cache"
	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/rs/zerolog/log"
)

// summaryWindow is the lookback for "recent" activity counters.
const summaryWindow = 7 * 24 * time.Hour

type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	cache     cache.AnalyticsCache
}

func NewAnalyticsService(analytics repository.AnalyticsRepository, c cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, cache: c}
}

// Summary serves the dashboard aggregation, cache-aside.
func (s *AnalyticsService) Summary(ctx context.Context) (*domain.AnalyticsSummary, error) {
	summary, found, err := s.cache.GetSummary(ctx, summaryWindow)
	if err != nil {
		log.Warn().Err(err).Msg("analytics cache read failed")
	}
	if found {
		return summary, nil
	}

	fresh, err := s.analytics.Summary(ctx, summaryWindow)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, summaryWindow, fresh); err != nil {
		log.Warn().Err(err).Msg("analytics cache write failed")
	}
	return fresh, nil
}
