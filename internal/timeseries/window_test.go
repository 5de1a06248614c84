package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	start, end, err := ParseWindow("1717200000000", "1717286400000")
	require.NoError(t, err)
	assert.Equal(t, baseTime, start)
	assert.Equal(t, baseTime.Add(24*time.Hour), end)
	assert.Equal(t, time.UTC, start.Location())

	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "1717286400000"},
		{"missing end", "1717200000000", ""},
		{"not a number", "yesterday", "1717286400000"},
		{"ISO date", "2024-06-01T00:00:00Z", "1717286400000"},
		{"empty window", "1717200000000", "1717200000000"},
		{"reversed", "1717286400000", "1717200000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseWindow(tt.start, tt.end)
			assert.ErrorIs(t, err, ErrInvalidDateRange)
		})
	}
}

func TestParseResolution(t *testing.T) {
	res, err := ParseResolution("3600")
	require.NoError(t, err)
	assert.Equal(t, 3600.0, res)

	res, err = ParseResolution("0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, res)

	_, err = ParseResolution("")
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = ParseResolution("hourly")
	assert.ErrorIs(t, err, ErrInvalidResolution)
}
