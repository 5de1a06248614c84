// Package models contains data models for the time-series service.
package models

import (
	"encoding/json"
	"time"
)

// TelemetryMessage is one report from a device: a timestamp and a reading
// per sensor name. Data is kept undecoded per key so that keys which are not
// sensors of the device, or whose values are not numbers, can be skipped
// without rejecting the rest of the message.
type TelemetryMessage struct {
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data" binding:"required"`
}

// Reading returns the numeric value reported under key. It reports false
// when the key is missing, null or not a number.
func (m TelemetryMessage) Reading(key string) (float64, bool) {
	switch v := m.Data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// IngestResult reports which keys of a TelemetryMessage were stored, and
// the instant they were stored at
type IngestResult struct {
	Timestamp  time.Time `json:"timestamp"`
	Accepted   []string  `json:"accepted"`
	Ignored    []string  `json:"ignored"`
	Duplicates []string  `json:"duplicates"`
}
