package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

// TelemetryIngestor stores one telemetry message of a device
type TelemetryIngestor interface {
	Ingest(ctx context.Context, device *models.Device, msg models.TelemetryMessage) (*models.IngestResult, error)
}

// IngressHandler accepts telemetry pushed over HTTP
type IngressHandler struct {
	devices  repository.DeviceRepository
	ingestor TelemetryIngestor
	timeout  time.Duration
}

// NewIngressHandler creates a new ingress handler. A positive timeout bounds
// each request's storage work.
func NewIngressHandler(devices repository.DeviceRepository, ingestor TelemetryIngestor, timeout time.Duration) *IngressHandler {
	return &IngressHandler{
		devices:  devices,
		ingestor: ingestor,
		timeout:  timeout,
	}
}

// IngressResponse echoes the accepted message with the resolved device.
// The embedded result carries the timestamp the readings were stored at,
// which is the server's clock when the message had none.
type IngressResponse struct {
	DeviceID uuid.UUID      `json:"deviceId"`
	Data     map[string]any `json:"data"`
	models.IngestResult
}

// Post stores a telemetry message for the device identified by field/value,
// where field is "id" or "name"
// POST /api/v1/data/:field/:value
func (h *IngressHandler) Post(c *gin.Context) {
	var msg models.TelemetryMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	device, ok := h.lookupDevice(ctx, c)
	if !ok {
		return
	}

	result, err := h.ingestor.Ingest(ctx, device, msg)
	if err != nil && (result == nil || !errors.Is(err, repository.ErrDuplicateSample)) {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to store telemetry")
		return
	}

	resp := IngressResponse{
		DeviceID:     device.ID,
		Data:         msg.Data,
		IngestResult: *result,
	}

	if err != nil && len(result.Accepted) == 0 {
		c.JSON(http.StatusConflict, resp)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *IngressHandler) lookupDevice(ctx context.Context, c *gin.Context) (*models.Device, bool) {
	var (
		device *models.Device
		err    error
	)

	switch field, value := c.Param("field"), c.Param("value"); field {
	case "id":
		id, parseErr := uuid.Parse(value)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "invalid_device_id", "Invalid device ID format")
			return nil, false
		}
		device, err = h.devices.GetByID(ctx, id)
	case "name":
		device, err = h.devices.GetByName(ctx, value)
	default:
		respondError(c, http.StatusBadRequest, "invalid_lookup_field", `Devices are looked up by "id" or "name"`)
		return nil, false
	}

	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			respondError(c, http.StatusBadRequest, "device_not_found", "Device not found")
			return nil, false
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to resolve device")
		return nil, false
	}

	return device, true
}
