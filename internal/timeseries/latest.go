package timeseries

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

// LatestFetcher returns the newest sample of every sensor of many devices
// using a fixed number of queries
type LatestFetcher struct {
	devices repository.DeviceRepository
	samples repository.SampleRepository
	logger  *zap.Logger
}

// NewLatestFetcher creates a new latest-value fetcher
func NewLatestFetcher(devices repository.DeviceRepository, samples repository.SampleRepository, logger *zap.Logger) *LatestFetcher {
	return &LatestFetcher{devices: devices, samples: samples, logger: logger}
}

// Latest maps each requested device to {sensor name: newest sample}.
// Every requested device is present; sensors without samples are omitted.
func (f *LatestFetcher) Latest(ctx context.Context, deviceIDs []uuid.UUID) (map[uuid.UUID]map[string]models.Sample, error) {
	result := make(map[uuid.UUID]map[string]models.Sample, len(deviceIDs))
	unique := make([]uuid.UUID, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		if _, seen := result[id]; seen {
			continue
		}
		result[id] = map[string]models.Sample{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return result, nil
	}

	sensors, err := f.devices.ListSensorsByDevices(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	if len(sensors) == 0 {
		return result, nil
	}

	byID := make(map[int64]*models.Sensor, len(sensors))
	sensorIDs := make([]int64, 0, len(sensors))
	for _, s := range sensors {
		byID[s.ID] = s
		sensorIDs = append(sensorIDs, s.ID)
	}

	latest, err := f.samples.Latest(ctx, sensorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest samples: %w", err)
	}

	for sensorID, sample := range latest {
		sensor, ok := byID[sensorID]
		if !ok {
			continue
		}
		readings, ok := result[sensor.DeviceID]
		if !ok {
			continue
		}
		readings[sensor.Name] = sample
	}

	f.logger.Debug("fetched latest samples",
		zap.Int("devices", len(unique)),
		zap.Int("sensors", len(sensors)),
		zap.Int("readings", len(latest)))

	return result, nil
}
