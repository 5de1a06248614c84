package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebasr/device-timeseries/internal/repository"
	"github.com/sebasr/device-timeseries/internal/timeseries"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

// respondReadError maps errors of the read path onto HTTP statuses
func respondReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timeseries.ErrInvalidResolution):
		respondError(c, http.StatusBadRequest, "invalid_resolution", err.Error())
	case errors.Is(err, timeseries.ErrInvalidDateRange):
		respondError(c, http.StatusBadRequest, "invalid_date_range", err.Error())
	case errors.Is(err, repository.ErrDeviceNotFound):
		respondError(c, http.StatusNotFound, "device_not_found", "Device not found")
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to read time-series data")
	}
}
