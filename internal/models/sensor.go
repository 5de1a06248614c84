package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// DefaultResolution is the native sampling interval, in seconds, given to
// sensors that do not declare one
const DefaultResolution = 120.0

// ErrInvalidSensor is returned when a sensor definition fails validation
var ErrInvalidSensor = errors.New("invalid sensor")

// AggregationType is the reduction applied when samples are downsampled
type AggregationType string

// Supported aggregation types
const (
	AggregationSum    AggregationType = "sum"
	AggregationMean   AggregationType = "mean"
	AggregationMedian AggregationType = "median"
	AggregationMin    AggregationType = "min"
	AggregationMax    AggregationType = "max"
)

// Valid reports whether a is a supported aggregation type
func (a AggregationType) Valid() bool {
	switch a {
	case AggregationSum, AggregationMean, AggregationMedian, AggregationMin, AggregationMax:
		return true
	}
	return false
}

// GraphType is a display hint for clients
type GraphType string

// Supported graph types
const (
	GraphTypeLine GraphType = "ts_graph"
	GraphTypeBar  GraphType = "ts_bar"
)

// Sensor is one measured quantity on a device
type Sensor struct {
	ID              int64           `json:"id" db:"id"`
	DeviceID        uuid.UUID       `json:"deviceId" db:"device_id"`
	Name            string          `json:"name" db:"name"` // Key used in payloads and fetch results
	DescriptiveName string          `json:"descriptiveName,omitempty" db:"descriptive_name"`
	Unit            string          `json:"unit,omitempty" db:"unit"`
	GraphType       GraphType       `json:"graphType" db:"graph_type"`
	Resolution      float64         `json:"resolution" db:"resolution"` // Native sampling interval in seconds
	AggregationType AggregationType `json:"aggregationType" db:"aggregation_type"`
}

// ApplyDefaults fills unset optional fields
func (s *Sensor) ApplyDefaults() {
	if s.Resolution == 0 {
		s.Resolution = DefaultResolution
	}
	if s.AggregationType == "" {
		s.AggregationType = AggregationSum
	}
	if s.GraphType == "" {
		s.GraphType = GraphTypeLine
	}
}

// Validate checks the sensor definition
func (s *Sensor) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSensor)
	}
	if math.IsNaN(s.Resolution) || math.IsInf(s.Resolution, 0) || s.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be a positive number of seconds", ErrInvalidSensor)
	}
	if !s.AggregationType.Valid() {
		return fmt.Errorf("%w: unsupported aggregation type %q", ErrInvalidSensor, s.AggregationType)
	}
	if s.GraphType != GraphTypeLine && s.GraphType != GraphTypeBar {
		return fmt.Errorf("%w: unsupported graph type %q", ErrInvalidSensor, s.GraphType)
	}
	return nil
}
