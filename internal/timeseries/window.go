package timeseries

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDateRange is returned for a missing, malformed or empty query window
var ErrInvalidDateRange = errors.New("invalid date range")

// ParseWindow parses start and end given as Unix timestamps in milliseconds
// into a half-open window [start, end)
func ParseWindow(startMillis, endMillis string) (time.Time, time.Time, error) {
	start, err := parseMillis("start", startMillis)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseMillis("end", endMillis)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := validateWindow(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ParseResolution parses a resolution in seconds
func ParseResolution(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: resolution is required", ErrInvalidResolution)
	}
	res, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidResolution, s)
	}
	return res, nil
}

func parseMillis(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidDateRange, name)
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a Unix timestamp in milliseconds", ErrInvalidDateRange, name)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func validateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidDateRange)
	}
	return nil
}
