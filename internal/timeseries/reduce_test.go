package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/device-timeseries/internal/models"
)

func TestReducers(t *testing.T) {
	reducers := DefaultReducers()

	tests := []struct {
		typ    models.AggregationType
		values []float64
		want   float64
	}{
		{models.AggregationSum, []float64{1, 2, 3.5}, 6.5},
		{models.AggregationMean, []float64{1, 2, 3, 6}, 3},
		{models.AggregationMedian, []float64{5, 1, 3}, 3},
		{models.AggregationMedian, []float64{4, 1, 3, 2}, 2.5},
		{models.AggregationMedian, []float64{7}, 7},
		{models.AggregationMin, []float64{3, -1, 2}, -1},
		{models.AggregationMax, []float64{3, -1, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, err := reducers.Reduce(tt.typ, tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestReducers_MedianDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := DefaultReducers().Reduce(models.AggregationMedian, values)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestReducers_Unknown(t *testing.T) {
	_, err := DefaultReducers().Reduce("mode", []float64{1})
	assert.ErrorIs(t, err, ErrUnknownAggregation)
}
