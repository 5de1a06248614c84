package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sebasr/device-timeseries/internal/database"
	"github.com/sebasr/device-timeseries/internal/models"
)

var (
	// ErrDeviceNotFound is returned when a device is not found
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceExists is returned when trying to create a device with an existing name
	ErrDeviceExists = errors.New("device already exists")

	// ErrSensorNotFound is returned when a device has no sensor with the requested name
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrSensorExists is returned when a device already has a sensor with the same name
	ErrSensorExists = errors.New("sensor already exists")
)

const sensorColumns = `id, device_id, name, descriptive_name, unit, graph_type, resolution, aggregation_type`

// SQLDeviceRepository implements DeviceRepository on PostgreSQL or SQLite
type SQLDeviceRepository struct {
	db *database.DB
}

// NewSQLDeviceRepository creates a new SQL device repository
func NewSQLDeviceRepository(db *database.DB) *SQLDeviceRepository {
	return &SQLDeviceRepository{db: db}
}

// Create stores a new device, assigning an ID and creation time when unset
func (r *SQLDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	if device.CreatedAt.IsZero() {
		device.CreatedAt = time.Now()
	}
	device.CreatedAt = device.CreatedAt.UTC().Truncate(time.Microsecond)

	query := `INSERT INTO devices (id, name, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		device.ID, device.Name, r.db.Dialect.TimeArg(device.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by its UUID
func (r *SQLDeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	query := `SELECT id, name, created_at FROM devices WHERE id = ?`
	return r.getDevice(ctx, query, id)
}

// GetByName retrieves a device by its unique name
func (r *SQLDeviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	query := `SELECT id, name, created_at FROM devices WHERE name = ?`
	return r.getDevice(ctx, query, name)
}

func (r *SQLDeviceRepository) getDevice(ctx context.Context, query string, arg any) (*models.Device, error) {
	var (
		device    models.Device
		createdAt database.Time
	)
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), arg).Scan(&device.ID, &device.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	device.CreatedAt = createdAt.Time

	return &device, nil
}

// ListByIDs retrieves the devices that exist among ids, ordered by name
func (r *SQLDeviceRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Device, error) {
	devices := []*models.Device{}
	if len(ids) == 0 {
		return devices, nil
	}

	query := `SELECT id, name, created_at FROM devices WHERE ` + r.db.Dialect.AnyUUID("id") + ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), database.ListArg(r.db.Dialect, uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			device    models.Device
			createdAt database.Time
		)
		if err := rows.Scan(&device.ID, &device.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		device.CreatedAt = createdAt.Time
		devices = append(devices, &device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}

	return devices, nil
}

// CreateSensor stores a new sensor on an existing device
func (r *SQLDeviceRepository) CreateSensor(ctx context.Context, sensor *models.Sensor) error {
	sensor.ApplyDefaults()
	if err := sensor.Validate(); err != nil {
		return err
	}

	if _, err := r.GetByID(ctx, sensor.DeviceID); err != nil {
		return err
	}

	query := `
		INSERT INTO sensors (
			device_id, name, descriptive_name, unit,
			graph_type, resolution, aggregation_type
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query),
		sensor.DeviceID, sensor.Name, sensor.DescriptiveName, sensor.Unit,
		string(sensor.GraphType), sensor.Resolution, string(sensor.AggregationType),
	).Scan(&sensor.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrSensorExists
		}
		return fmt.Errorf("failed to create sensor: %w", err)
	}

	return nil
}

// ListSensors retrieves all sensors of a device, ordered by name
func (r *SQLDeviceRepository) ListSensors(ctx context.Context, deviceID uuid.UUID) ([]*models.Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE device_id = ? ORDER BY name`
	return r.querySensors(ctx, query, deviceID)
}

// ListSensorsByDevices retrieves the sensors of many devices in one query
func (r *SQLDeviceRepository) ListSensorsByDevices(ctx context.Context, deviceIDs []uuid.UUID) ([]*models.Sensor, error) {
	if len(deviceIDs) == 0 {
		return []*models.Sensor{}, nil
	}

	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE ` + r.db.Dialect.AnyUUID("device_id") + ` ORDER BY device_id, name`
	return r.querySensors(ctx, query, database.ListArg(r.db.Dialect, uuidStrings(deviceIDs)))
}

// GetSensorByName retrieves a sensor of a device by its canonical name
func (r *SQLDeviceRepository) GetSensorByName(ctx context.Context, deviceID uuid.UUID, name string) (*models.Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE device_id = ? AND name = ?`

	sensor, err := scanSensor(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), deviceID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}

	return sensor, nil
}

func (r *SQLDeviceRepository) querySensors(ctx context.Context, query string, args ...any) ([]*models.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	sensors := []*models.Sensor{}
	for rows.Next() {
		sensor, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, sensor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sensors: %w", err)
	}

	return sensors, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSensor(row rowScanner) (*models.Sensor, error) {
	var (
		sensor          models.Sensor
		graphType       string
		aggregationType string
	)
	err := row.Scan(
		&sensor.ID,
		&sensor.DeviceID,
		&sensor.Name,
		&sensor.DescriptiveName,
		&sensor.Unit,
		&graphType,
		&sensor.Resolution,
		&aggregationType,
	)
	if err != nil {
		return nil, err
	}
	sensor.GraphType = models.GraphType(graphType)
	sensor.AggregationType = models.AggregationType(aggregationType)

	return &sensor, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
