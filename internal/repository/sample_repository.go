// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"
	"time"

	"github.com/sebasr/device-timeseries/internal/models"
)

// AggregateQuery describes a database-side chunked aggregation: samples of
// one sensor in [Start, End) are numbered in timestamp order and grouped by
// Factor consecutive samples. At most Limit groups are returned.
type AggregateQuery struct {
	SensorID int64
	Start    time.Time
	End      time.Time
	Factor   int
	Limit    int
	Type     models.AggregationType
}

// AggregateRow is one reduced group, Group counting from 0 at the oldest sample
type AggregateRow struct {
	Group int64
	Value float64
	Count int64
}

// SampleRepository defines the interface for time-series sample storage
type SampleRepository interface {
	// Insert stores a single sample. The stored timestamp is the sample's
	// truncated to microseconds; the sample itself is left unchanged.
	Insert(ctx context.Context, sample *models.Sample) error

	// InsertBatch stores multiple samples in a single transaction
	InsertBatch(ctx context.Context, samples []*models.Sample) error

	// RangeQuery retrieves samples of a sensor with start <= ts < end, newest first
	RangeQuery(ctx context.Context, sensorID int64, start, end time.Time) ([]models.Sample, error)

	// Latest retrieves the newest sample of each sensor in one query.
	// Sensors without samples are absent from the result.
	Latest(ctx context.Context, sensorIDs []int64) (map[int64]models.Sample, error)

	// AggregateRange reduces chunks of samples inside the database
	AggregateRange(ctx context.Context, q AggregateQuery) ([]AggregateRow, error)
}
