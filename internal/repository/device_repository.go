package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sebasr/device-timeseries/internal/models"
)

// DeviceRepository defines the interface for device and sensor data access
type DeviceRepository interface {
	// Create stores a new device
	Create(ctx context.Context, device *models.Device) error

	// GetByID retrieves a device by its UUID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error)

	// GetByName retrieves a device by its unique name
	GetByName(ctx context.Context, name string) (*models.Device, error)

	// ListByIDs retrieves the devices that exist among ids
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Device, error)

	// CreateSensor stores a new sensor on an existing device
	CreateSensor(ctx context.Context, sensor *models.Sensor) error

	// ListSensors retrieves all sensors of a device
	ListSensors(ctx context.Context, deviceID uuid.UUID) ([]*models.Sensor, error)

	// ListSensorsByDevices retrieves the sensors of many devices in one query
	ListSensorsByDevices(ctx context.Context, deviceIDs []uuid.UUID) ([]*models.Sensor, error)

	// GetSensorByName retrieves a sensor of a device by its canonical name
	GetSensorByName(ctx context.Context, deviceID uuid.UUID, name string) (*models.Sensor, error)
}
