package timeseries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

// Ingestor writes device readings into the sample store
type Ingestor struct {
	devices repository.DeviceRepository
	samples repository.SampleRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewIngestor creates a new ingestor
func NewIngestor(devices repository.DeviceRepository, samples repository.SampleRepository, logger *zap.Logger) *Ingestor {
	return &Ingestor{devices: devices, samples: samples, logger: logger, now: time.Now}
}

// InsertSample stores one reading of the named sensor. A second reading
// at the same instant fails with repository.ErrDuplicateSample.
func (i *Ingestor) InsertSample(ctx context.Context, deviceID uuid.UUID, sensorName string, value float64, ts time.Time) error {
	sensor, err := i.devices.GetSensorByName(ctx, deviceID, sensorName)
	if err != nil {
		return err
	}

	return i.samples.Insert(ctx, &models.Sample{SensorID: sensor.ID, Timestamp: ts, Value: value})
}

// Ingest stores one sample per key of msg.Data that names a sensor of the
// device and carries a number. Other keys, including null readings, are
// logged and reported as ignored. Duplicate samples do not stop
// the remaining keys; they are reported in the result and joined into the
// returned error.
func (i *Ingestor) Ingest(ctx context.Context, device *models.Device, msg models.TelemetryMessage) (*models.IngestResult, error) {
	sensors, err := i.devices.ListSensors(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	byName := make(map[string]*models.Sensor, len(sensors))
	for _, s := range sensors {
		byName[s.Name] = s
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = i.now()
	}

	keys := make([]string, 0, len(msg.Data))
	for key := range msg.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &models.IngestResult{Timestamp: ts, Accepted: []string{}, Ignored: []string{}, Duplicates: []string{}}
	var duplicates []error
	for _, key := range keys {
		sensor, known := byName[key]
		value, numeric := msg.Reading(key)
		if !known || !numeric {
			result.Ignored = append(result.Ignored, key)
			continue
		}

		err := i.samples.Insert(ctx, &models.Sample{SensorID: sensor.ID, Timestamp: ts, Value: value})
		switch {
		case err == nil:
			result.Accepted = append(result.Accepted, key)
		case errors.Is(err, repository.ErrDuplicateSample):
			result.Duplicates = append(result.Duplicates, key)
			duplicates = append(duplicates, err)
		default:
			return nil, fmt.Errorf("failed to store %q: %w", key, err)
		}
	}

	if len(result.Ignored) > 0 {
		i.logger.Info("ignored readings for unknown sensors or non-numeric values",
			zap.String("device", device.Name),
			zap.Strings("keys", result.Ignored))
	}
	i.logger.Debug("ingested telemetry",
		zap.String("device", device.Name),
		zap.Time("ts", ts),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("duplicates", len(result.Duplicates)))

	return result, errors.Join(duplicates...)
}
