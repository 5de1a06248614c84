package timeseries

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sebasr/device-timeseries/internal/models"
)

// ErrUnknownAggregation is returned for an aggregation type with no reducer
var ErrUnknownAggregation = errors.New("unknown aggregation type")

// Reducer collapses the values of one non-empty bucket into a single value
type Reducer func(values []float64) float64

// Reducers maps aggregation types to their reducer
type Reducers map[models.AggregationType]Reducer

// DefaultReducers returns the reducers for every supported aggregation type
func DefaultReducers() Reducers {
	return Reducers{
		models.AggregationSum:    sum,
		models.AggregationMean:   mean,
		models.AggregationMedian: median,
		models.AggregationMin:    minimum,
		models.AggregationMax:    maximum,
	}
}

// Reduce applies the reducer registered for typ
func (r Reducers) Reduce(typ models.AggregationType, values []float64) (float64, error) {
	fn, ok := r[typ]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAggregation, typ)
	}
	return fn(values), nil
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	return sum(values) / float64(len(values))
}

// median averages the two middle values of an even-sized bucket
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minimum(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maximum(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
