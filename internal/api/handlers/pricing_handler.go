package handlers

import (
	"net/http"

	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	service *service.PricingService
}

func NewPricingHandler(service *service.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

func (h *PricingHandler) List(c *gin.Context) {
	recs, err := h.service.List(c.Request.Context(), queryInt64(c, "product_id"), queryInt(c, "limit", 50))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *PricingHandler) Apply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rec, err := h.service.Apply(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *PricingHandler) RevenueImpactReport(c *gin.Context) {
	report, err := h.service.RevenueImpactReport(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
