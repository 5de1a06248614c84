package timeseries

import (
	"time"

	"github.com/sebasr/device-timeseries/internal/models"
)

// resolutionDuration converts a resolution in seconds to a time.Duration
func resolutionDuration(resolution float64) time.Duration {
	return time.Duration(resolution * float64(time.Second))
}

// bucketCount is the number of whole resolution steps in [start, end)
func bucketCount(start, end time.Time, resolution float64) int {
	step := resolutionDuration(resolution)
	if step <= 0 || !start.Before(end) {
		return 0
	}
	return int(end.Sub(start) / step)
}

// bucketLabels returns n timestamps counted back from end, oldest first.
// Bucket j is labelled end - (n-j)*resolution, so the newest bucket is
// labelled end - resolution regardless of where data exists.
func bucketLabels(end time.Time, resolution float64, n int) []time.Time {
	step := resolutionDuration(resolution)
	labels := make([]time.Time, n)
	for j := range labels {
		labels[j] = end.Add(-time.Duration(n-j) * step)
	}
	return labels
}

// chunk slices ascending values into consecutive groups of factor values.
// The last group may be short and groups past n are dropped.
func chunk(values []float64, factor, n int) [][]float64 {
	groups := make([][]float64, 0, n)
	for i := 0; i < len(values) && len(groups) < n; i += factor {
		end := i + factor
		if end > len(values) {
			end = len(values)
		}
		groups = append(groups, values[i:end])
	}
	return groups
}

// labelPoints pairs values with labels; a nil value marks an empty bucket
func labelPoints(values []*float64, labels []time.Time) []models.Point {
	points := make([]models.Point, len(labels))
	for j, ts := range labels {
		points[j] = models.Point{Timestamp: ts}
		if j < len(values) {
			points[j].Value = values[j]
		}
	}
	return points
}
