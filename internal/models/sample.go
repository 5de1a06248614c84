package models

import "time"

// Sample is one raw reading of a sensor
type Sample struct {
	SensorID  int64     `json:"sensorId" db:"sensor_id"`
	Timestamp time.Time `json:"ts" db:"ts"`
	Value     float64   `json:"value" db:"value"`
}

// Point is one entry of a fetch result. Value is nil for a bucket that
// received no samples.
type Point struct {
	Value     *float64  `json:"value"`
	Timestamp time.Time `json:"ts"`
}

// Point converts a raw sample into a result point
func (s Sample) Point() Point {
	v := s.Value
	return Point{Value: &v, Timestamp: s.Timestamp}
}
