package repository

import (
	"context"
	"time"

	"github.com/sebasr/device-timeseries/internal/models"
)

// MockSampleRepository is a mock implementation of SampleRepository for testing
type MockSampleRepository struct {
	InsertFunc         func(ctx context.Context, sample *models.Sample) error
	InsertBatchFunc    func(ctx context.Context, samples []*models.Sample) error
	RangeQueryFunc     func(ctx context.Context, sensorID int64, start, end time.Time) ([]models.Sample, error)
	LatestFunc         func(ctx context.Context, sensorIDs []int64) (map[int64]models.Sample, error)
	AggregateRangeFunc func(ctx context.Context, q AggregateQuery) ([]AggregateRow, error)
}

// NewMockSampleRepository creates a new mock sample repository with default implementations
func NewMockSampleRepository() *MockSampleRepository {
	return &MockSampleRepository{
		InsertFunc: func(_ context.Context, _ *models.Sample) error {
			return nil
		},
		InsertBatchFunc: func(_ context.Context, _ []*models.Sample) error {
			return nil
		},
		RangeQueryFunc: func(_ context.Context, _ int64, _ time.Time, _ time.Time) ([]models.Sample, error) {
			return []models.Sample{}, nil
		},
		LatestFunc: func(_ context.Context, _ []int64) (map[int64]models.Sample, error) {
			return map[int64]models.Sample{}, nil
		},
		AggregateRangeFunc: func(_ context.Context, _ AggregateQuery) ([]AggregateRow, error) {
			return []AggregateRow{}, nil
		},
	}
}

// Insert implements SampleRepository.Insert
func (m *MockSampleRepository) Insert(ctx context.Context, sample *models.Sample) error {
	return m.InsertFunc(ctx, sample)
}

// InsertBatch implements SampleRepository.InsertBatch
func (m *MockSampleRepository) InsertBatch(ctx context.Context, samples []*models.Sample) error {
	return m.InsertBatchFunc(ctx, samples)
}

// RangeQuery implements SampleRepository.RangeQuery
func (m *MockSampleRepository) RangeQuery(ctx context.Context, sensorID int64, start, end time.Time) ([]models.Sample, error) {
	return m.RangeQueryFunc(ctx, sensorID, start, end)
}

// Latest implements SampleRepository.Latest
func (m *MockSampleRepository) Latest(ctx context.Context, sensorIDs []int64) (map[int64]models.Sample, error) {
	return m.LatestFunc(ctx, sensorIDs)
}

// AggregateRange implements SampleRepository.AggregateRange
func (m *MockSampleRepository) AggregateRange(ctx context.Context, q AggregateQuery) ([]AggregateRow, error) {
	return m.AggregateRangeFunc(ctx, q)
}
