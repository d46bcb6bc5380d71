package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products *service.ProductService
	forecast *service.ForecastService
	pricing  *service.PricingService
}

func NewProductHandler(products *service.ProductService, forecast *service.ForecastService, pricing *service.PricingService) *ProductHandler {
	return &ProductHandler{products: products, forecast: forecast, pricing: pricing}
}

func (h *ProductHandler) parseFilter(c *gin.Context) *domain.ProductFilter {
	filter := &domain.ProductFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	if v := c.Query("forecasting_enabled"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			filter.ForecastingEnabled = &enabled
		}
	}
	if v := c.Query("pricing_enabled"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			filter.PricingEnabled = &enabled
		}
	}
	return filter
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := h.parseFilter(c)
	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid product payload: "+err.Error())
		return
	}

	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

type forecastRequest struct {
	Days    int                    `json:"days"`
	Factors domain.ExternalFactors `json:"external_factors"`
}

// Forecast runs the demand forecast for one product.
func (h *ProductHandler) Forecast(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		errorResponse(c, http.StatusBadRequest, "invalid forecast payload: "+err.Error())
		return
	}

	forecasts, err := h.forecast.ForecastDemand(c.Request.Context(), id, req.Days, req.Factors)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

type pricingRequest struct {
	Market domain.MarketConditions `json:"market_conditions"`
}

// Pricing computes a price recommendation for one product.
func (h *ProductHandler) Pricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		errorResponse(c, http.StatusBadRequest, "invalid pricing payload: "+err.Error())
		return
	}

	rec, err := h.pricing.Recommend(c.Request.Context(), id, req.Market)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
