package database

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sensors (
		id BIGSERIAL PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		descriptive_name VARCHAR(255) NOT NULL DEFAULT '',
		unit VARCHAR(50) NOT NULL DEFAULT '',
		graph_type VARCHAR(20) NOT NULL DEFAULT 'ts_graph',
		resolution DOUBLE PRECISION NOT NULL DEFAULT 120 CHECK (resolution > 0),
		aggregation_type VARCHAR(10) NOT NULL DEFAULT 'sum'
			CHECK (aggregation_type IN ('sum', 'mean', 'median', 'min', 'max')),
		UNIQUE (device_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS ts_samples (
		sensor_id BIGINT NOT NULL REFERENCES sensors(id) ON DELETE CASCADE,
		ts TIMESTAMPTZ NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (sensor_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ts_samples_sensor_ts ON ts_samples (sensor_id, ts DESC)`,
}

// SQLite stores timestamps as INTEGER Unix microseconds
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sensors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		descriptive_name TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		graph_type TEXT NOT NULL DEFAULT 'ts_graph',
		resolution REAL NOT NULL DEFAULT 120 CHECK (resolution > 0),
		aggregation_type TEXT NOT NULL DEFAULT 'sum'
			CHECK (aggregation_type IN ('sum', 'mean', 'median', 'min', 'max')),
		UNIQUE (device_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS ts_samples (
		sensor_id INTEGER NOT NULL REFERENCES sensors(id) ON DELETE CASCADE,
		ts INTEGER NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (sensor_id, ts)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ts_samples_sensor_ts ON ts_samples (sensor_id, ts DESC)`,
}

// ApplySchema creates the tables and indexes if they do not exist yet.
// It is safe to call on every startup.
func (db *DB) ApplySchema(ctx context.Context) error {
	statements := postgresSchema
	if db.Dialect == DialectSQLite {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
