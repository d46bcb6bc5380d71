package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
)

type RiskHandler struct {
	service *service.RiskService
}

func NewRiskHandler(service *service.RiskService) *RiskHandler {
	return &RiskHandler{service: service}
}

func (h *RiskHandler) Assess(c *gin.Context) {
	alerts, err := h.service.Assess(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *RiskHandler) ListAlerts(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	alerts, err := h.service.ListAlerts(c.Request.Context(), status, queryInt(c, "limit", 50))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

type resolveRequest struct {
	Notes string `json:"notes"`
}

func (h *RiskHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		errorResponse(c, http.StatusBadRequest, "invalid resolve payload: "+err.Error())
		return
	}

	alert, err := h.service.Resolve(c.Request.Context(), id, req.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *RiskHandler) PredictDisruption(c *gin.Context) {
	riskType := strings.TrimSpace(c.Query("risk_type"))
	if riskType == "" {
		errorResponse(c, http.StatusBadRequest, "risk_type is required")
		return
	}

	estimate := h.service.PredictDisruption(riskType, queryInt(c, "horizon_days", 30))
	c.JSON(http.StatusOK, estimate)
}
