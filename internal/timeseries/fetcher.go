package timeseries

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

// Fetcher serves resolution-aware range reads for all sensors of a device
type Fetcher struct {
	devices     repository.DeviceRepository
	samples     repository.SampleRepository
	engine      Engine
	validator   ResolutionValidator
	concurrency int
	logger      *zap.Logger
}

// NewFetcher creates a new range fetcher
func NewFetcher(
	devices repository.DeviceRepository,
	samples repository.SampleRepository,
	engine Engine,
	cfg config.TimeseriesConfig,
	logger *zap.Logger,
) *Fetcher {
	concurrency := cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Fetcher{
		devices:     devices,
		samples:     samples,
		engine:      engine,
		validator:   NewResolutionValidator(cfg.ResolutionEpsilon),
		concurrency: concurrency,
		logger:      logger,
	}
}

type sensorJob struct {
	sensor *models.Sensor
	factor int
}

// Fetch returns {sensor name: points} for every sensor of the device over
// [start, end). Sensors whose native resolution equals the requested one
// are returned as stored, newest first; the others are aggregated into
// buckets, oldest first. The request fails as a whole, before any sample is
// read, if the resolution is invalid for any sensor.
func (f *Fetcher) Fetch(ctx context.Context, deviceID uuid.UUID, start, end time.Time, resolution float64) (map[string][]models.Point, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	if _, err := f.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}
	sensors, err := f.devices.ListSensors(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}

	jobs := make([]sensorJob, 0, len(sensors))
	for _, sensor := range sensors {
		factor, err := f.validator.Validate(sensor, resolution)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, sensorJob{sensor: sensor, factor: factor})
	}

	var mu sync.Mutex
	result := make(map[string][]models.Point, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			points, err := f.fetchSensor(gctx, job, start, end, resolution)
			if err != nil {
				return err
			}
			mu.Lock()
			result[job.sensor.Name] = points
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("fetched device range",
		zap.String("device_id", deviceID.String()),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Float64("resolution", resolution),
		zap.Int("sensors", len(jobs)))

	return result, nil
}

func (f *Fetcher) fetchSensor(ctx context.Context, job sensorJob, start, end time.Time, resolution float64) ([]models.Point, error) {
	if job.factor == 1 {
		raw, err := f.samples.RangeQuery(ctx, job.sensor.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to read samples for sensor %q: %w", job.sensor.Name, err)
		}
		points := make([]models.Point, len(raw))
		for i, s := range raw {
			points[i] = s.Point()
		}
		return points, nil
	}

	return f.engine.Aggregate(ctx, AggregateRequest{
		Sensor:     job.sensor,
		Start:      start,
		End:        end,
		Resolution: resolution,
		Factor:     job.factor,
	})
}
