package handlers

import (
	"net/http"

	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) List(c *gin.Context) {
	forecasts, err := h.service.List(c.Request.Context(), queryInt64(c, "product_id"), queryInt(c, "limit", 50))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

type batchForecastRequest struct {
	ProductIDs []int64 `json:"product_ids" binding:"required"`
	Days       int     `json:"days"`
}

func (h *ForecastHandler) Batch(c *gin.Context) {
	var req batchForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid batch payload: "+err.Error())
		return
	}

	results, err := h.service.BatchForecast(c.Request.Context(), req.ProductIDs, req.Days)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type actualDemandRequest struct {
	ActualDemand int `json:"actual_demand" binding:"min=0"`
}

func (h *ForecastHandler) AttachActual(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req actualDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid actual demand payload: "+err.Error())
		return
	}

	forecast, err := h.service.AttachActual(c.Request.Context(), id, req.ActualDemand)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (h *ForecastHandler) AccuracyReport(c *gin.Context) {
	report, err := h.service.AccuracyReport(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
