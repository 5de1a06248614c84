// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/database"
)

// NewSQLite returns a schema-initialised SQLite database in a temp directory.
// It is closed when the test finishes.
func NewSQLite(t testing.TB) *database.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "timeseries.db"),
	}
	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.ApplySchema(context.Background()); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	return db
}

// NewPostgres starts a PostgreSQL container and returns a schema-initialised
// connection to it. The test is skipped in -short mode.
func NewPostgres(t testing.TB) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_timeseries"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute)),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := database.New(&config.DatabaseConfig{
		Driver:                config.DriverPostgres,
		URL:                   connStr,
		MaxConnections:        10,
		MaxIdleConnections:    2,
		ConnectionMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.ApplySchema(ctx); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	return db
}
