package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
	"github.com/sebasr/device-timeseries/internal/timeseries"
)

// RangeFetcher reads resolution-aware series for every sensor of a device
type RangeFetcher interface {
	Fetch(ctx context.Context, deviceID uuid.UUID, start, end time.Time, resolution float64) (map[string][]models.Point, error)
}

// LatestReader reads the newest sample of every sensor of many devices
type LatestReader interface {
	Latest(ctx context.Context, deviceIDs []uuid.UUID) (map[uuid.UUID]map[string]models.Sample, error)
}

// TimeseriesHandler serves the read side of the API
type TimeseriesHandler struct {
	devices repository.DeviceRepository
	fetcher RangeFetcher
	latest  LatestReader
}

// NewTimeseriesHandler creates a new time-series handler
func NewTimeseriesHandler(devices repository.DeviceRepository, fetcher RangeFetcher, latest LatestReader) *TimeseriesHandler {
	return &TimeseriesHandler{
		devices: devices,
		fetcher: fetcher,
		latest:  latest,
	}
}

// ListSensors returns a device together with its sensors
// GET /api/v1/devices/:id/sensors
func (h *TimeseriesHandler) ListSensors(c *gin.Context) {
	deviceID, ok := parseDeviceID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	device, err := h.devices.GetByID(ctx, deviceID)
	if err != nil {
		respondReadError(c, err)
		return
	}

	sensors, err := h.devices.ListSensors(ctx, deviceID)
	if err != nil {
		respondReadError(c, err)
		return
	}

	c.JSON(http.StatusOK, device.ToResponse(sensors))
}

// FetchRange returns {sensor name: points} for the requested window
// GET /api/v1/devices/:id/data?start=<ms>&end=<ms>&resolution=<seconds>
func (h *TimeseriesHandler) FetchRange(c *gin.Context) {
	deviceID, ok := parseDeviceID(c)
	if !ok {
		return
	}

	start, end, err := timeseries.ParseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		respondReadError(c, err)
		return
	}

	resolution, err := timeseries.ParseResolution(c.Query("resolution"))
	if err != nil {
		respondReadError(c, err)
		return
	}

	series, err := h.fetcher.Fetch(c.Request.Context(), deviceID, start, end, resolution)
	if err != nil {
		respondReadError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// DeviceLatest returns the newest sample of every sensor of one device
// GET /api/v1/devices/:id/data/latest
func (h *TimeseriesHandler) DeviceLatest(c *gin.Context) {
	deviceID, ok := parseDeviceID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.devices.GetByID(ctx, deviceID); err != nil {
		respondReadError(c, err)
		return
	}

	latest, err := h.latest.Latest(ctx, []uuid.UUID{deviceID})
	if err != nil {
		respondReadError(c, err)
		return
	}

	readings := latest[deviceID]
	if readings == nil {
		readings = map[string]models.Sample{}
	}
	c.JSON(http.StatusOK, readings)
}

// FetchLatest returns the newest sample of every sensor for each requested
// device. Unknown devices map to an empty object.
// GET /api/v1/data/latest?device=<uuid>&device=<uuid>
func (h *TimeseriesHandler) FetchLatest(c *gin.Context) {
	params := c.QueryArray("device")
	if len(params) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_device_id", "At least one device query parameter is required")
		return
	}

	ids := make([]uuid.UUID, 0, len(params))
	for _, p := range params {
		id, err := uuid.Parse(p)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_device_id", "Invalid device ID format: "+p)
			return
		}
		ids = append(ids, id)
	}

	latest, err := h.latest.Latest(c.Request.Context(), ids)
	if err != nil {
		respondReadError(c, err)
		return
	}

	c.JSON(http.StatusOK, latest)
}

func parseDeviceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_device_id", "Invalid device ID format")
		return uuid.Nil, false
	}
	return id, true
}
