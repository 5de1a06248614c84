// Package config provides configuration management for the time-series service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported aggregation engines
const (
	EngineInProcess = "inprocess"
	EngineSQL       = "sql"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Timeseries TimeseriesConfig
	MQTT       MQTTConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	RateLimit int64 // requests per minute per client IP
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// TimeseriesConfig controls the read/aggregate pipeline
type TimeseriesConfig struct {
	AggregationEngine string  // "inprocess" or "sql"
	ResolutionEpsilon float64 // tolerance when checking resolution multiples
	FetchConcurrency  int     // sensors fetched in parallel per request
	IngestTimeout     time.Duration
}

// MQTTConfig holds the optional MQTT ingestion settings
type MQTTConfig struct {
	BrokerURL   string // empty disables the subscriber
	TopicPrefix string
	ClientID    string
	KeepAlive   uint16
}

// Enabled reports whether the MQTT subscriber should be started
func (m *MQTTConfig) Enabled() bool {
	return m.BrokerURL != ""
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver                string
	URL                   string
	Host                  string
	Port                  string
	Name                  string
	User                  string
	Password              string
	SSLMode               string
	SQLitePath            string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// defaults mirrors the environment variables understood by Load
var defaults = map[string]any{
	"PORT":                       "8080",
	"RATE_LIMIT_PER_MINUTE":      600,
	"STORAGE_DRIVER":             DriverPostgres,
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "5432",
	"DB_NAME":                    "timeseries_dev",
	"DB_USER":                    "timeseries_user",
	"DB_PASSWORD":                "timeseries_pass",
	"DB_SSLMODE":                 "disable",
	"SQLITE_PATH":                "data/timeseries.db",
	"DB_MAX_CONNECTIONS":         25,
	"DB_MAX_IDLE_CONNECTIONS":    5,
	"DB_CONNECTION_MAX_LIFETIME": "5m",
	"JWT_TOKEN_TTL":              "24h",
	"TS_AGGREGATION_ENGINE":      EngineInProcess,
	"TS_RESOLUTION_EPSILON":      1e-9,
	"TS_FETCH_CONCURRENCY":       4,
	"TS_INGEST_TIMEOUT":          "10s",
	"MQTT_TOPIC_PREFIX":          "devices",
	"MQTT_CLIENT_ID":             "device-timeseries",
	"MQTT_KEEPALIVE":             30,
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
}

// Load loads configuration from environment variables and, when CONFIG_FILE is
// set, from a YAML file using the same (case-insensitive) keys. Environment
// variables take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("PORT"),
			RateLimit: v.GetInt64("RATE_LIMIT_PER_MINUTE"),
		},
		Database: DatabaseConfig{
			Driver:                strings.ToLower(v.GetString("STORAGE_DRIVER")),
			URL:                   v.GetString("DATABASE_URL"),
			Host:                  v.GetString("DB_HOST"),
			Port:                  v.GetString("DB_PORT"),
			Name:                  v.GetString("DB_NAME"),
			User:                  v.GetString("DB_USER"),
			Password:              GetSecret("DB_PASSWORD", v.GetString("DB_PASSWORD")),
			SSLMode:               v.GetString("DB_SSLMODE"),
			SQLitePath:            v.GetString("SQLITE_PATH"),
			MaxConnections:        v.GetInt("DB_MAX_CONNECTIONS"),
			MaxIdleConnections:    v.GetInt("DB_MAX_IDLE_CONNECTIONS"),
			ConnectionMaxLifetime: v.GetDuration("DB_CONNECTION_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			JWTSecret: GetSecret("JWT_SECRET", "dev-secret-key-change-in-production"),
			TokenTTL:  v.GetDuration("JWT_TOKEN_TTL"),
		},
		Timeseries: TimeseriesConfig{
			AggregationEngine: strings.ToLower(v.GetString("TS_AGGREGATION_ENGINE")),
			ResolutionEpsilon: v.GetFloat64("TS_RESOLUTION_EPSILON"),
			FetchConcurrency:  v.GetInt("TS_FETCH_CONCURRENCY"),
			IngestTimeout:     v.GetDuration("TS_INGEST_TIMEOUT"),
		},
		MQTT: MQTTConfig{
			BrokerURL:   v.GetString("MQTT_BROKER_URL"),
			TopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			KeepAlive:   uint16(v.GetUint("MQTT_KEEPALIVE")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Database.Driver)
	}

	switch c.Timeseries.AggregationEngine {
	case EngineInProcess, EngineSQL:
	default:
		return fmt.Errorf("unsupported TS_AGGREGATION_ENGINE %q", c.Timeseries.AggregationEngine)
	}

	if c.Server.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Timeseries.FetchConcurrency <= 0 {
		return errors.New("TS_FETCH_CONCURRENCY must be positive")
	}
	if c.Timeseries.ResolutionEpsilon < 0 {
		return errors.New("TS_RESOLUTION_EPSILON must not be negative")
	}
	return nil
}

// ConnectionString returns the database connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf(
			"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
			d.SQLitePath,
		)
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
