package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/device-timeseries/internal/database"
	"github.com/sebasr/device-timeseries/internal/models"
)

func TestSQLDeviceRepository_Create(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		device := &models.Device{Name: "greenhouse-01"}
		require.NoError(t, repo.Create(ctx, device))
		assert.NotEqual(t, uuid.Nil, device.ID)
		assert.False(t, device.CreatedAt.IsZero())

		retrieved, err := repo.GetByID(ctx, device.ID)
		require.NoError(t, err)
		assert.Equal(t, device.ID, retrieved.ID)
		assert.Equal(t, "greenhouse-01", retrieved.Name)
		assert.True(t, device.CreatedAt.Equal(retrieved.CreatedAt))

		byName, err := repo.GetByName(ctx, "greenhouse-01")
		require.NoError(t, err)
		assert.Equal(t, device.ID, byName.ID)
	})
}

func TestSQLDeviceRepository_Create_DuplicateName(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &models.Device{Name: "dup"}))
		err := repo.Create(ctx, &models.Device{Name: "dup"})
		assert.ErrorIs(t, err, ErrDeviceExists)
	})
}

func TestSQLDeviceRepository_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrDeviceNotFound)

		_, err = repo.GetByName(ctx, "nobody")
		assert.ErrorIs(t, err, ErrDeviceNotFound)

		_, err = repo.GetSensorByName(ctx, uuid.New(), "temp")
		assert.ErrorIs(t, err, ErrSensorNotFound)
	})
}

func TestSQLDeviceRepository_ListByIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		a := &models.Device{Name: "b-device", CreatedAt: time.Now()}
		b := &models.Device{Name: "a-device", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))
		require.NoError(t, repo.Create(ctx, &models.Device{Name: "unrelated"}))

		devices, err := repo.ListByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, devices, 2)
		assert.Equal(t, "a-device", devices[0].Name)
		assert.Equal(t, "b-device", devices[1].Name)

		empty, err := repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestSQLDeviceRepository_Sensors(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		device := &models.Device{Name: "meter"}
		require.NoError(t, repo.Create(ctx, device))

		power := &models.Sensor{
			DeviceID:        device.ID,
			Name:            "power",
			DescriptiveName: "Active power",
			Unit:            "W",
			GraphType:       models.GraphTypeBar,
			Resolution:      120,
			AggregationType: models.AggregationMean,
		}
		require.NoError(t, repo.CreateSensor(ctx, power))
		assert.NotZero(t, power.ID)

		// Defaults are applied
		energy := &models.Sensor{DeviceID: device.ID, Name: "energy"}
		require.NoError(t, repo.CreateSensor(ctx, energy))

		got, err := repo.GetSensorByName(ctx, device.ID, "power")
		require.NoError(t, err)
		assert.Equal(t, power, got)

		sensors, err := repo.ListSensors(ctx, device.ID)
		require.NoError(t, err)
		require.Len(t, sensors, 2)
		assert.Equal(t, "energy", sensors[0].Name)
		assert.Equal(t, models.DefaultResolution, sensors[0].Resolution)
		assert.Equal(t, models.AggregationSum, sensors[0].AggregationType)
		assert.Equal(t, models.GraphTypeLine, sensors[0].GraphType)
		assert.Equal(t, "power", sensors[1].Name)
	})
}

func TestSQLDeviceRepository_CreateSensor_Errors(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		device := &models.Device{Name: "meter"}
		require.NoError(t, repo.Create(ctx, device))
		require.NoError(t, repo.CreateSensor(ctx, &models.Sensor{DeviceID: device.ID, Name: "power"}))

		err := repo.CreateSensor(ctx, &models.Sensor{DeviceID: device.ID, Name: "power"})
		assert.ErrorIs(t, err, ErrSensorExists)

		err = repo.CreateSensor(ctx, &models.Sensor{DeviceID: uuid.New(), Name: "power"})
		assert.ErrorIs(t, err, ErrDeviceNotFound)

		err = repo.CreateSensor(ctx, &models.Sensor{DeviceID: device.ID, Name: "bad", Resolution: -1})
		assert.ErrorIs(t, err, models.ErrInvalidSensor)

		// Same sensor name on another device is fine
		other := &models.Device{Name: "meter-2"}
		require.NoError(t, repo.Create(ctx, other))
		assert.NoError(t, repo.CreateSensor(ctx, &models.Sensor{DeviceID: other.ID, Name: "power"}))
	})
}

func TestSQLDeviceRepository_ListSensorsByDevices(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		var ids []uuid.UUID
		for _, name := range []string{"d1", "d2", "d3"} {
			device := &models.Device{Name: name}
			require.NoError(t, repo.Create(ctx, device))
			ids = append(ids, device.ID)
			for _, sensor := range []string{"a", "b", "c"} {
				require.NoError(t, repo.CreateSensor(ctx, &models.Sensor{DeviceID: device.ID, Name: sensor}))
			}
		}

		sensors, err := repo.ListSensorsByDevices(ctx, ids[:2])
		require.NoError(t, err)
		assert.Len(t, sensors, 6)
		for _, s := range sensors {
			assert.Contains(t, ids[:2], s.DeviceID)
		}

		none, err := repo.ListSensorsByDevices(ctx, []uuid.UUID{})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestSQLDeviceRepository_ListBeyondBindLimit(t *testing.T) {
	forEachStore(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLDeviceRepository(db)
		ctx := context.Background()

		device := &models.Device{Name: "d1"}
		require.NoError(t, repo.Create(ctx, device))
		require.NoError(t, repo.CreateSensor(ctx, &models.Sensor{DeviceID: device.ID, Name: "temp"}))

		// more ids than either driver accepts as separate parameters
		ids := make([]uuid.UUID, 0, 70001)
		for len(ids) < 70000 {
			ids = append(ids, uuid.New())
		}
		ids = append(ids, device.ID)

		devices, err := repo.ListByIDs(ctx, ids)
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, device.ID, devices[0].ID)

		sensors, err := repo.ListSensorsByDevices(ctx, ids)
		require.NoError(t, err)
		require.Len(t, sensors, 1)
		assert.Equal(t, "temp", sensors[0].Name)
	})
}
