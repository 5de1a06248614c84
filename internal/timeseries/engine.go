package timeseries

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

// AggregateRequest is one sensor's downsampling job
type AggregateRequest struct {
	Sensor     *models.Sensor
	Start      time.Time
	End        time.Time
	Resolution float64 // requested bucket width in seconds
	Factor     int     // native samples per bucket
}

// ExpectedSamples is the number of native samples the window would hold
// if the sensor reported without gaps
func (r AggregateRequest) ExpectedSamples() float64 {
	return r.End.Sub(r.Start).Seconds() / r.Sensor.Resolution
}

// Engine downsamples one sensor's samples into labelled buckets, oldest first.
// The result always has one point per whole resolution step in the window.
type Engine interface {
	Aggregate(ctx context.Context, req AggregateRequest) ([]models.Point, error)
}

// NewEngine returns the engine registered under name
// (config.EngineInProcess or config.EngineSQL)
func NewEngine(name string, samples repository.SampleRepository, logger *zap.Logger) (Engine, error) {
	switch name {
	case config.EngineInProcess, "":
		return NewInProcessEngine(samples, DefaultReducers(), logger), nil
	case config.EngineSQL:
		return NewSQLEngine(samples, logger), nil
	default:
		return nil, fmt.Errorf("unsupported aggregation engine %q", name)
	}
}

// InProcessEngine reads the raw window and reduces buckets in Go
type InProcessEngine struct {
	samples  repository.SampleRepository
	reducers Reducers
	logger   *zap.Logger
}

// NewInProcessEngine creates an engine that aggregates in process
func NewInProcessEngine(samples repository.SampleRepository, reducers Reducers, logger *zap.Logger) *InProcessEngine {
	return &InProcessEngine{samples: samples, reducers: reducers, logger: logger}
}

// Aggregate implements Engine
func (e *InProcessEngine) Aggregate(ctx context.Context, req AggregateRequest) ([]models.Point, error) {
	if req.Factor < 1 {
		return nil, fmt.Errorf("%w: aggregation factor %d", ErrInvalidResolution, req.Factor)
	}
	if _, ok := e.reducers[req.Sensor.AggregationType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregation, req.Sensor.AggregationType)
	}

	raw, err := e.samples.RangeQuery(ctx, req.Sensor.ID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples for sensor %q: %w", req.Sensor.Name, err)
	}

	// Store order is newest first
	values := make([]float64, len(raw))
	for i, s := range raw {
		values[len(raw)-1-i] = s.Value
	}

	n := bucketCount(req.Start, req.End, req.Resolution)
	groups := chunk(values, req.Factor, n)
	reduced := make([]*float64, len(groups))
	for j, group := range groups {
		v, err := e.reducers.Reduce(req.Sensor.AggregationType, group)
		if err != nil {
			return nil, err
		}
		reduced[j] = &v
	}

	e.logger.Debug("aggregated sensor in process",
		zap.String("sensor", req.Sensor.Name),
		zap.Int("samples", len(values)),
		zap.Float64("expected_samples", req.ExpectedSamples()),
		zap.Int("factor", req.Factor),
		zap.Int("buckets", n),
		zap.Int("filled_buckets", len(groups)))

	return labelPoints(reduced, bucketLabels(req.End, req.Resolution, n)), nil
}

// SQLEngine pushes chunking and reduction into the database and only
// labels and pads the result
type SQLEngine struct {
	samples repository.SampleRepository
	logger  *zap.Logger
}

// NewSQLEngine creates an engine that aggregates in the database
func NewSQLEngine(samples repository.SampleRepository, logger *zap.Logger) *SQLEngine {
	return &SQLEngine{samples: samples, logger: logger}
}

// Aggregate implements Engine
func (e *SQLEngine) Aggregate(ctx context.Context, req AggregateRequest) ([]models.Point, error) {
	if req.Factor < 1 {
		return nil, fmt.Errorf("%w: aggregation factor %d", ErrInvalidResolution, req.Factor)
	}
	if !req.Sensor.AggregationType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregation, req.Sensor.AggregationType)
	}

	n := bucketCount(req.Start, req.End, req.Resolution)
	rows, err := e.samples.AggregateRange(ctx, repository.AggregateQuery{
		SensorID: req.Sensor.ID,
		Start:    req.Start,
		End:      req.End,
		Factor:   req.Factor,
		Limit:    n,
		Type:     req.Sensor.AggregationType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sensor %q: %w", req.Sensor.Name, err)
	}

	reduced := make([]*float64, n)
	for _, row := range rows {
		if row.Group < 0 || row.Group >= int64(n) {
			continue
		}
		v := row.Value
		reduced[row.Group] = &v
	}

	e.logger.Debug("aggregated sensor in database",
		zap.String("sensor", req.Sensor.Name),
		zap.Float64("expected_samples", req.ExpectedSamples()),
		zap.Int("factor", req.Factor),
		zap.Int("buckets", n),
		zap.Int("filled_buckets", len(rows)))

	return labelPoints(reduced, bucketLabels(req.End, req.Resolution, n)), nil
}
