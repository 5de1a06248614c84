package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/models"
	"github.com/sebasr/device-timeseries/internal/repository"
)

var (
	provisionName    string
	provisionSensors []string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a device and its sensors",
	Long: `Create a device, or reuse an existing one with the same name, and add sensors.
Each --sensor is name[:resolution[:aggregation[:unit]]]; resolution is in seconds
and defaults to 120, aggregation is one of sum, mean, median, min, max.`,
	Example: `  device-timeseries provision --name weather-01 \
    --sensor rainfall:60:sum:mm --sensor temperature:120:mean:C`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provisionName, "name", "", "device name")
	provisionCmd.Flags().StringArrayVar(&provisionSensors, "sensor", nil, "sensor definition (repeatable)")
	_ = provisionCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	sensors := make([]*models.Sensor, 0, len(provisionSensors))
	for _, def := range provisionSensors {
		sensor, err := parseSensor(def)
		if err != nil {
			return err
		}
		sensors = append(sensors, sensor)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	device := &models.Device{Name: provisionName}
	err = a.devices.Create(ctx, device)
	if errors.Is(err, repository.ErrDeviceExists) {
		device, err = a.devices.GetByName(ctx, provisionName)
	}
	if err != nil {
		return err
	}

	for _, sensor := range sensors {
		sensor.DeviceID = device.ID
		if err := a.devices.CreateSensor(ctx, sensor); err != nil {
			return fmt.Errorf("sensor %q: %w", sensor.Name, err)
		}
		a.logger.Info("created sensor",
			zap.String("device", device.Name),
			zap.String("sensor", sensor.Name),
			zap.Float64("resolution", sensor.Resolution),
			zap.String("aggregation", string(sensor.AggregationType)))
	}

	all, err := a.devices.ListSensors(ctx, device.ID)
	if err != nil {
		return err
	}
	return printJSON(cmd, device.ToResponse(all))
}

func parseSensor(def string) (*models.Sensor, error) {
	parts := strings.Split(def, ":")
	if len(parts) > 4 || parts[0] == "" {
		return nil, fmt.Errorf("invalid sensor definition %q", def)
	}

	sensor := &models.Sensor{Name: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		res, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid resolution in %q: %w", def, err)
		}
		sensor.Resolution = res
	}
	if len(parts) > 2 {
		sensor.AggregationType = models.AggregationType(parts[2])
	}
	if len(parts) > 3 {
		sensor.Unit = parts[3]
	}

	sensor.ApplyDefaults()
	if err := sensor.Validate(); err != nil {
		return nil, err
	}
	return sensor, nil
}
