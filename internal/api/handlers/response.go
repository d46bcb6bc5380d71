package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/pricing"
	"github.com/andresuchdata/chainopt/internal/routing"
	"github.com/andresuchdata/chainopt/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

// serviceError maps known error types onto HTTP status codes.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForecastingDisabled),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrMissingDepot),
		errors.Is(err, pricing.ErrPricingDisabled),
		errors.Is(err, routing.ErrNoStops):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyApplied), errors.Is(err, domain.ErrExpired):
		errorResponse(c, http.StatusConflict, err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback))); err == nil {
		return v
	}
	return fallback
}

func queryInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
