// Package timeseries implements resolution-aware reads over sensor samples:
// resolution validation, bucket aggregation, range and latest-value fetches,
// and sample ingestion.
package timeseries

import (
	"errors"
	"fmt"
	"math"

	"github.com/sebasr/device-timeseries/internal/models"
)

// ErrInvalidResolution is returned when a requested resolution is not a
// positive integer multiple of a sensor's native resolution
var ErrInvalidResolution = errors.New("invalid resolution")

// maxFactor bounds the aggregation factor so it always fits an int and a SQL parameter
const maxFactor = math.MaxInt32

// ResolutionValidator checks requested resolutions against sensors
type ResolutionValidator struct {
	// Epsilon is the tolerance allowed between requested/native and the
	// nearest integer
	Epsilon float64
}

// NewResolutionValidator creates a validator with the given tolerance
func NewResolutionValidator(epsilon float64) ResolutionValidator {
	return ResolutionValidator{Epsilon: epsilon}
}

// Validate returns the aggregation factor (requested / native) for sensor,
// or ErrInvalidResolution. A factor of 1 means samples are returned as stored.
func (v ResolutionValidator) Validate(sensor *models.Sensor, requested float64) (int, error) {
	if math.IsNaN(requested) || math.IsInf(requested, 0) || requested <= 0 {
		return 0, fmt.Errorf("%w: resolution must be a positive number of seconds, got %v", ErrInvalidResolution, requested)
	}
	native := sensor.Resolution
	if math.IsNaN(native) || native <= 0 {
		return 0, fmt.Errorf("%w: sensor %q has no usable native resolution", ErrInvalidResolution, sensor.Name)
	}

	ratio := requested / native
	k := math.Round(ratio)
	if k < 1 {
		return 0, fmt.Errorf("%w: %gs is finer than sensor %q native resolution %gs",
			ErrInvalidResolution, requested, sensor.Name, native)
	}
	if math.Abs(ratio-k) > v.Epsilon {
		return 0, fmt.Errorf("%w: %gs is not a multiple of sensor %q native resolution %gs",
			ErrInvalidResolution, requested, sensor.Name, native)
	}
	if k > maxFactor {
		return 0, fmt.Errorf("%w: %gs is too coarse for sensor %q", ErrInvalidResolution, requested, sensor.Name)
	}

	return int(k), nil
}
