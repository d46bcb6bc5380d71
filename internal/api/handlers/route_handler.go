package handlers

import (
	"net/http"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	service *service.RouteService
}

func NewRouteHandler(service *service.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) ListLocations(c *gin.Context) {
	locations, err := h.service.ListLocations(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (h *RouteHandler) CreateLocation(c *gin.Context) {
	var location domain.DeliveryLocation
	if err := c.ShouldBindJSON(&location); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid location payload: "+err.Error())
		return
	}
	location.IsActive = true

	if err := h.service.CreateLocation(c.Request.Context(), &location); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func (h *RouteHandler) Optimize(c *gin.Context) {
	var req service.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid optimize payload: "+err.Error())
		return
	}

	plan, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *RouteHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	plan, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *RouteHandler) List(c *gin.Context) {
	plans, err := h.service.List(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": plans})
}

func (h *RouteHandler) Implement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.MarkImplemented(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "implemented"})
}

func (h *RouteHandler) SavingsReport(c *gin.Context) {
	report, err := h.service.SavingsReport(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
