// cmd/server/main.go
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/chainopt/internal/api"
	"github.com/andresuchdata/chainopt/internal/cache"
	"github.com/andresuchdata/chainopt/internal/config"
	"github.com/andresuchdata/chainopt/internal/forecast"
	"github.com/andresuchdata/chainopt/internal/pricing"
	"github.com/andresuchdata/chainopt/internal/repository/postgres"
	"github.com/andresuchdata/chainopt/internal/risk"
	"github.com/andresuchdata/chainopt/internal/routing"
	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/andresuchdata/chainopt/internal/storage"
	"github.com/andresuchdata/chainopt/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	productRepo := postgres.NewProductRepository(db)
	supplierRepo := postgres.NewSupplierRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	routeRepo := postgres.NewRouteRepository(db)
	riskRepo := postgres.NewRiskRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)

	// Analytics cache, no-op when disabled
	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, analytics caching disabled")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	// Optional route manifest exports
	var exports storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		exports = client
	}

	// Optimization engines
	engine := forecast.NewEngine(cfg.Forecast.Seed)
	var routeRng *rand.Rand
	if cfg.Routing.Seed != 0 {
		routeRng = rand.New(rand.NewSource(cfg.Routing.Seed))
	}
	optimizer := routing.NewOptimizer(routing.CostParams{
		FuelCostPerKm:     cfg.Routing.FuelCostPerKm,
		DriverCostPerHour: cfg.Routing.DriverCostPerHour,
	}, routeRng)
	advisor := pricing.NewAdvisor(pricing.Config{
		MinProfitMarginPct:    cfg.Pricing.MinProfitMarginPct,
		MaxPriceAdjustmentPct: cfg.Pricing.MaxPriceAdjustmentPct,
		InventoryWeight:       cfg.Pricing.InventoryWeight,
		MarketWeight:          cfg.Pricing.MarketWeight,
		CompetitorWeight:      cfg.Pricing.CompetitorWeight,
	})
	assessor := risk.NewAssessor()

	// Services
	services := &api.Services{
		Products:  service.NewProductService(productRepo),
		Forecast:  service.NewForecastService(productRepo, salesRepo, forecastRepo, analyticsCache, engine, cfg.Forecast),
		Pricing:   service.NewPricingService(productRepo, pricingRepo, analyticsCache, advisor),
		Routes:    service.NewRouteService(locationRepo, routeRepo, analyticsCache, optimizer, exports),
		Risks:     service.NewRiskService(supplierRepo, productRepo, forecastRepo, routeRepo, locationRepo, riskRepo, assessor),
		Analytics: service.NewAnalyticsService(analyticsRepo, analyticsCache),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
