package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebasr/device-timeseries/internal/database"
	"github.com/sebasr/device-timeseries/internal/database/dbtest"
	"github.com/sebasr/device-timeseries/internal/models"
)

// forEachStore runs fn against a fresh SQLite database and, outside -short
// mode, a PostgreSQL container
func forEachStore(t *testing.T, fn func(t *testing.T, db *database.DB)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, dbtest.NewSQLite(t))
	})
	t.Run("postgres", func(t *testing.T) {
		fn(t, dbtest.NewPostgres(t))
	})
}

// seedSensor creates a device with one sensor and returns the sensor
func seedSensor(t *testing.T, repo *SQLDeviceRepository, deviceName, sensorName string) *models.Sensor {
	t.Helper()
	ctx := context.Background()

	device := &models.Device{Name: deviceName}
	require.NoError(t, repo.Create(ctx, device))

	sensor := &models.Sensor{DeviceID: device.ID, Name: sensorName, Resolution: 60}
	require.NoError(t, repo.CreateSensor(ctx, sensor))
	return sensor
}

var baseTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
