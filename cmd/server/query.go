package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	fetchDevice     string
	fetchStart      string
	fetchEnd        string
	fetchResolution float64
	latestDevices   []string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print the series of every sensor of a device over a time window",
	Example: `  device-timeseries fetch --device 3f0c... --start 2024-06-01T00:00:00Z \
    --end 2024-06-02T00:00:00Z --resolution 3600`,
	RunE: runFetch,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest reading of every sensor of one or more devices",
	RunE:  runLatest,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDevice, "device", "", "device ID")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "window start (RFC 3339)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "window end, exclusive (RFC 3339, default now)")
	fetchCmd.Flags().Float64Var(&fetchResolution, "resolution", 0, "resolution in seconds")
	_ = fetchCmd.MarkFlagRequired("device")
	_ = fetchCmd.MarkFlagRequired("start")
	_ = fetchCmd.MarkFlagRequired("resolution")

	latestCmd.Flags().StringSliceVar(&latestDevices, "device", nil, "device ID (repeatable)")
	_ = latestCmd.MarkFlagRequired("device")

	rootCmd.AddCommand(fetchCmd, latestCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	deviceID, err := uuid.Parse(fetchDevice)
	if err != nil {
		return fmt.Errorf("invalid device ID: %w", err)
	}
	start, err := time.Parse(time.RFC3339, fetchStart)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	end := time.Now().UTC()
	if fetchEnd != "" {
		if end, err = time.Parse(time.RFC3339, fetchEnd); err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.fetcher.Fetch(cmd.Context(), deviceID, start.UTC(), end.UTC(), fetchResolution)
	if err != nil {
		return err
	}
	return printJSON(cmd, series)
}

func runLatest(cmd *cobra.Command, _ []string) error {
	ids := make([]uuid.UUID, 0, len(latestDevices))
	for _, s := range latestDevices {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("invalid device ID %q: %w", s, err)
		}
		ids = append(ids, id)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	latest, err := a.latest.Latest(cmd.Context(), ids)
	if err != nil {
		return err
	}
	return printJSON(cmd, latest)
}
