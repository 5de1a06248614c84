package timeseries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebasr/device-timeseries/internal/database/dbtest"
	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

var baseTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// fixture is a SQLite-backed store for end-to-end tests
type fixture struct {
	devices *repository.SQLDeviceRepository
	samples *repository.SQLSampleRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.NewSQLite(t)
	return &fixture{
		devices: repository.NewSQLDeviceRepository(db),
		samples: repository.NewSQLSampleRepository(db),
	}
}

func (f *fixture) device(t *testing.T, name string) *models.Device {
	t.Helper()
	device := &models.Device{Name: name}
	require.NoError(t, f.devices.Create(context.Background(), device))
	return device
}

func (f *fixture) sensor(t *testing.T, device *models.Device, name string, resolution float64, agg models.AggregationType) *models.Sensor {
	t.Helper()
	sensor := &models.Sensor{DeviceID: device.ID, Name: name, Resolution: resolution, AggregationType: agg}
	require.NoError(t, f.devices.CreateSensor(context.Background(), sensor))
	return sensor
}

// fill stores values[i] at start + offsets[i]*step
func (f *fixture) fill(t *testing.T, sensor *models.Sensor, start time.Time, step time.Duration, offsets []int, values []float64) {
	t.Helper()
	require.Len(t, values, len(offsets))
	batch := make([]*models.Sample, len(offsets))
	for i, off := range offsets {
		batch[i] = &models.Sample{SensorID: sensor.ID, Timestamp: start.Add(time.Duration(off) * step), Value: values[i]}
	}
	require.NoError(t, f.samples.InsertBatch(context.Background(), batch))
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ptr(v float64) *float64 {
	return &v
}
