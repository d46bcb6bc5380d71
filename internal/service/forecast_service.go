// internal/service/forecast_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/chainopt/internal/cache"
	"github.com/andresuchdata/chainopt/internal/config"
	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/forecast"
	"github.com/andresuchdata/chainopt/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrForecastingDisabled is returned for products with forecasting switched off.
var ErrForecastingDisabled = errors.New("demand forecasting is not enabled for this product")

// modelMaxAge bounds how long a cached model artifact serves predictions
// before the next request retrains it.
const modelMaxAge = 24 * time.Hour

type ForecastService struct {
	products  repository.ProductRepository
	sales     repository.SalesRepository
	forecasts repository.ForecastRepository
	analytics cache.AnalyticsCache
	engine    *forecast.Engine
	cfg       config.ForecastConfig

	mu     sync.RWMutex
	models map[int64]*forecast.Model
}

func NewForecastService(
	products repository.ProductRepository,
	sales repository.SalesRepository,
	forecasts repository.ForecastRepository,
	analytics cache.AnalyticsCache,
	engine *forecast.Engine,
	cfg config.ForecastConfig,
) *ForecastService {
	return &ForecastService{
		products:  products,
		sales:     sales,
		forecasts: forecasts,
		analytics: analytics,
		engine:    engine,
		cfg:       cfg,
		models:    make(map[int64]*forecast.Model),
	}
}

// ForecastDemand produces and persists one forecast per day of the horizon.
// With insufficient history every day falls back to the proportional
// estimate instead of failing.
func (s *ForecastService) ForecastDemand(ctx context.Context, productID int64, days int, factors domain.ExternalFactors) ([]*domain.DemandForecast, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.ForecastingEnabled {
		return nil, ErrForecastingDisabled
	}

	if days <= 0 {
		days = s.cfg.HorizonDays
	}

	model, err := s.modelFor(ctx, product)
	if err != nil && !errors.Is(err, forecast.ErrInsufficientHistory) {
		return nil, err
	}

	start := time.Now().AddDate(0, 0, 1)
	results := make([]*domain.DemandForecast, 0, days)
	for day := 0; day < days; day++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		date := start.AddDate(0, 0, day)

		var pred forecast.Prediction
		var trainingPoints int
		if model != nil {
			pred = model.Predict(*product, date, factors)
			trainingPoints = model.TrainingPoints
		} else {
			pred = forecast.Fallback(*product, date)
		}

		f := &domain.DemandForecast{
			ProductID:       product.ID,
			ForecastDate:    date,
			ForecastType:    "daily",
			PredictedDemand: pred.PredictedDemand,
			IntervalLower:   pred.IntervalLower,
			IntervalUpper:   pred.IntervalUpper,
			ConfidenceScore: pred.ConfidenceScore,
			SeasonalFactor:  pred.SeasonalFactor,
			ModelVersion:    forecast.ModelVersion,
			Algorithm:       pred.Algorithm,
			TrainingPoints:  trainingPoints,
		}
		if err := s.forecasts.Save(ctx, f); err != nil {
			return nil, err
		}
		results = append(results, f)
	}

	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
	return results, nil
}

// BatchForecast runs ForecastDemand for several products concurrently.
// Failures are logged per product; the successful results are returned.
func (s *ForecastService) BatchForecast(ctx context.Context, productIDs []int64, days int) (map[int64][]*domain.DemandForecast, error) {
	type outcome struct {
		productID int64
		forecasts []*domain.DemandForecast
		err       error
	}

	var wg sync.WaitGroup
	outcomes := make(chan outcome, len(productIDs))

	for _, id := range productIDs {
		wg.Add(1)
		go func(productID int64) {
			defer wg.Done()
			forecasts, err := s.ForecastDemand(ctx, productID, days, domain.ExternalFactors{})
			outcomes <- outcome{productID: productID, forecasts: forecasts, err: err}
		}(id)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make(map[int64][]*domain.DemandForecast, len(productIDs))
	var failed int
	for out := range outcomes {
		if out.err != nil {
			failed++
			log.Error().Err(out.err).Int64("product_id", out.productID).Msg("batch forecast failed for product")
			continue
		}
		results[out.productID] = out.forecasts
	}

	if failed == len(productIDs) && len(productIDs) > 0 {
		return nil, fmt.Errorf("batch forecast failed for all %d products", failed)
	}
	return results, nil
}

// AttachActual records observed demand against an earlier forecast.
func (s *ForecastService) AttachActual(ctx context.Context, forecastID int64, actual int) (*domain.DemandForecast, error) {
	f, err := s.forecasts.AttachActual(ctx, forecastID, actual)
	if err != nil {
		return nil, err
	}
	if err := s.analytics.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
	return f, nil
}

func (s *ForecastService) List(ctx context.Context, productID int64, limit int) ([]*domain.DemandForecast, error) {
	return s.forecasts.List(ctx, productID, limit)
}

func (s *ForecastService) AccuracyReport(ctx context.Context) (*domain.ForecastAccuracyReport, error) {
	var report domain.ForecastAccuracyReport
	found, err := s.analytics.GetReport(ctx, "forecast_accuracy", &report)
	if err != nil {
		log.Warn().Err(err).Msg("analytics cache read failed")
	}
	if found {
		return &report, nil
	}

	fresh, err := s.forecasts.AccuracyReport(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.analytics.SetReport(ctx, "forecast_accuracy", fresh); err != nil {
		log.Warn().Err(err).Msg("analytics cache write failed")
	}
	return fresh, nil
}

// modelFor returns a cached model for the product, retraining when the
// artifact is missing or stale. ErrInsufficientHistory is passed through so
// callers can fall back.
func (s *ForecastService) modelFor(ctx context.Context, product *domain.Product) (*forecast.Model, error) {
	s.mu.RLock()
	model := s.models[product.ID]
	s.mu.RUnlock()

	if model != nil && time.Since(model.TrainedAt) < modelMaxAge {
		return model, nil
	}

	since := time.Now().AddDate(0, 0, -s.cfg.HistoryWindowDays)
	history, err := s.sales.History(ctx, product.ID, since)
	if err != nil {
		return nil, err
	}

	model, err = s.engine.Train(*product, history)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientHistory) {
			log.Info().
				Int64("product_id", product.ID).
				Int("history_points", len(history)).
				Msg("insufficient history, using fallback forecast")
		}
		return nil, err
	}

	s.mu.Lock()
	s.models[product.ID] = model
	s.mu.Unlock()

	log.Info().
		Int64("product_id", product.ID).
		Int("training_points", model.TrainingPoints).
		Str("model_version", model.Version).
		Msg("forecast model trained")
	return model, nil
}
