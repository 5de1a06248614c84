package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/device-timeseries/internal/models"
)

func TestResolutionValidator_Validate(t *testing.T) {
	validator := NewResolutionValidator(1e-9)

	tests := []struct {
		name       string
		native     float64
		requested  float64
		wantFactor int
		wantErr    bool
	}{
		{name: "equal is passthrough", native: 120, requested: 120, wantFactor: 1},
		{name: "double", native: 120, requested: 240, wantFactor: 2},
		{name: "hour from two minutes", native: 120, requested: 3600, wantFactor: 30},
		{name: "fractional native", native: 0.5, requested: 1.5, wantFactor: 3},
		{name: "float noise within epsilon", native: 0.1, requested: 0.3, wantFactor: 3},
		{name: "not a multiple", native: 120, requested: 777, wantErr: true},
		{name: "finer than native", native: 120, requested: 60, wantErr: true},
		{name: "rounds to one but below native", native: 120, requested: 119.9, wantErr: true},
		{name: "zero", native: 120, requested: 0, wantErr: true},
		{name: "negative", native: 120, requested: -240, wantErr: true},
		{name: "NaN", native: 120, requested: math.NaN(), wantErr: true},
		{name: "infinite", native: 120, requested: math.Inf(1), wantErr: true},
		{name: "absurdly coarse", native: 1e-6, requested: 1e9, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := &models.Sensor{Name: "power", Resolution: tt.native}
			factor, err := validator.Validate(sensor, tt.requested)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidResolution)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFactor, factor)
		})
	}
}

func TestResolutionValidator_Epsilon(t *testing.T) {
	sensor := &models.Sensor{Name: "power", Resolution: 120}

	_, err := NewResolutionValidator(0).Validate(sensor, 240.001)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	factor, err := NewResolutionValidator(0.01).Validate(sensor, 240.001)
	require.NoError(t, err)
	assert.Equal(t, 2, factor)
}

func TestResolutionValidator_ErrorNamesSensor(t *testing.T) {
	_, err := NewResolutionValidator(0).Validate(&models.Sensor{Name: "power", Resolution: 120}, 777)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"power"`)
	assert.Contains(t, err.Error(), "777")
}
