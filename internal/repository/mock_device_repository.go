package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sebasr/device-timeseries/internal/models"
)

// MockDeviceRepository is a mock implementation of DeviceRepository for testing
type MockDeviceRepository struct {
	CreateFunc               func(ctx context.Context, device *models.Device) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*models.Device, error)
	GetByNameFunc            func(ctx context.Context, name string) (*models.Device, error)
	ListByIDsFunc            func(ctx context.Context, ids []uuid.UUID) ([]*models.Device, error)
	CreateSensorFunc         func(ctx context.Context, sensor *models.Sensor) error
	ListSensorsFunc          func(ctx context.Context, deviceID uuid.UUID) ([]*models.Sensor, error)
	ListSensorsByDevicesFunc func(ctx context.Context, deviceIDs []uuid.UUID) ([]*models.Sensor, error)
	GetSensorByNameFunc      func(ctx context.Context, deviceID uuid.UUID, name string) (*models.Sensor, error)
}

// NewMockDeviceRepository creates a new mock device repository
func NewMockDeviceRepository() *MockDeviceRepository {
	return &MockDeviceRepository{
		CreateFunc: func(_ context.Context, _ *models.Device) error {
			return nil
		},
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*models.Device, error) {
			return nil, ErrDeviceNotFound
		},
		GetByNameFunc: func(_ context.Context, _ string) (*models.Device, error) {
			return nil, ErrDeviceNotFound
		},
		ListByIDsFunc: func(_ context.Context, _ []uuid.UUID) ([]*models.Device, error) {
			return []*models.Device{}, nil
		},
		CreateSensorFunc: func(_ context.Context, _ *models.Sensor) error {
			return nil
		},
		ListSensorsFunc: func(_ context.Context, _ uuid.UUID) ([]*models.Sensor, error) {
			return []*models.Sensor{}, nil
		},
		ListSensorsByDevicesFunc: func(_ context.Context, _ []uuid.UUID) ([]*models.Sensor, error) {
			return []*models.Sensor{}, nil
		},
		GetSensorByNameFunc: func(_ context.Context, _ uuid.UUID, _ string) (*models.Sensor, error) {
			return nil, ErrSensorNotFound
		},
	}
}

// Create implements DeviceRepository.Create
func (m *MockDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	return m.CreateFunc(ctx, device)
}

// GetByID implements DeviceRepository.GetByID
func (m *MockDeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	return m.GetByIDFunc(ctx, id)
}

// GetByName implements DeviceRepository.GetByName
func (m *MockDeviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	return m.GetByNameFunc(ctx, name)
}

// ListByIDs implements DeviceRepository.ListByIDs
func (m *MockDeviceRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Device, error) {
	return m.ListByIDsFunc(ctx, ids)
}

// CreateSensor implements DeviceRepository.CreateSensor
func (m *MockDeviceRepository) CreateSensor(ctx context.Context, sensor *models.Sensor) error {
	return m.CreateSensorFunc(ctx, sensor)
}

// ListSensors implements DeviceRepository.ListSensors
func (m *MockDeviceRepository) ListSensors(ctx context.Context, deviceID uuid.UUID) ([]*models.Sensor, error) {
	return m.ListSensorsFunc(ctx, deviceID)
}

// ListSensorsByDevices implements DeviceRepository.ListSensorsByDevices
func (m *MockDeviceRepository) ListSensorsByDevices(ctx context.Context, deviceIDs []uuid.UUID) ([]*models.Sensor, error) {
	return m.ListSensorsByDevicesFunc(ctx, deviceIDs)
}

// GetSensorByName implements DeviceRepository.GetSensorByName
func (m *MockDeviceRepository) GetSensorByName(ctx context.Context, deviceID uuid.UUID, name string) (*models.Sensor, error) {
	return m.GetSensorByNameFunc(ctx, deviceID, name)
}
