package models

import (
	"time"

	"github.com/google/uuid"
)

// Device represents a fielded device that reports sensor telemetry
type Device struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"` // Unique, used in MQTT topics and ingress lookups
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DeviceResponse represents a device and its sensors for API responses
type DeviceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Sensors   []*Sensor `json:"sensors"`
}

// ToResponse converts a Device to a DeviceResponse
func (d *Device) ToResponse(sensors []*Sensor) *DeviceResponse {
	if sensors == nil {
		sensors = []*Sensor{}
	}
	return &DeviceResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		Sensors:   sensors,
	}
}
