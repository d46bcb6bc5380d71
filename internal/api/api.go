// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/chainopt/internal/api/handlers"
	"github.com/andresuchdata/chainopt/internal/api/middleware"
	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Products  *service.ProductService
	Forecast  *service.ForecastService
	Pricing   *service.PricingService
	Routes    *service.RouteService
	Risks     *service.RiskService
	Analytics *service.AnalyticsService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.Products != nil {
		productHandler := handlers.NewProductHandler(services.Products, services.Forecast, services.Pricing)
		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("", productHandler.List)
			productGroup.POST("", productHandler.Create)
			productGroup.GET("/:id", productHandler.Get)
			productGroup.POST("/:id/forecast", productHandler.Forecast)
			productGroup.POST("/:id/pricing", productHandler.Pricing)
		}
	}

	if services.Forecast != nil {
		forecastHandler := handlers.NewForecastHandler(services.Forecast)
		forecastGroup := apiGroup.Group("/forecasts")
		{
			forecastGroup.GET("", forecastHandler.List)
			forecastGroup.POST("/batch", forecastHandler.Batch)
			forecastGroup.POST("/:id/actual", forecastHandler.AttachActual)
			forecastGroup.GET("/accuracy", forecastHandler.AccuracyReport)
		}
	}

	if services.Pricing != nil {
		pricingHandler := handlers.NewPricingHandler(services.Pricing)
		pricingGroup := apiGroup.Group("/pricing")
		{
			pricingGroup.GET("", pricingHandler.List)
			pricingGroup.POST("/:id/apply", pricingHandler.Apply)
			pricingGroup.GET("/revenue_impact", pricingHandler.RevenueImpactReport)
		}
	}

	if services.Routes != nil {
		routeHandler := handlers.NewRouteHandler(services.Routes)
		locationGroup := apiGroup.Group("/locations")
		{
			locationGroup.GET("", routeHandler.ListLocations)
			locationGroup.POST("", routeHandler.CreateLocation)
		}
		routeGroup := apiGroup.Group("/routes")
		{
			routeGroup.GET("", routeHandler.List)
			routeGroup.POST("/optimize", routeHandler.Optimize)
			routeGroup.GET("/:id", routeHandler.Get)
			routeGroup.POST("/:id/implement", routeHandler.Implement)
			routeGroup.GET("/savings", routeHandler.SavingsReport)
		}
	}

	if services.Risks != nil {
		riskHandler := handlers.NewRiskHandler(services.Risks)
		riskGroup := apiGroup.Group("/risks")
		{
			riskGroup.POST("/assess", riskHandler.Assess)
			riskGroup.GET("/alerts", riskHandler.ListAlerts)
			riskGroup.POST("/alerts/:id/resolve", riskHandler.Resolve)
			riskGroup.GET("/disruption", riskHandler.PredictDisruption)
		}
	}

	if services.Analytics != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
		apiGroup.GET("/analytics/summary", analyticsHandler.Summary)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
