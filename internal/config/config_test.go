package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cleanTimeseriesEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.RateLimit != 600 {
		t.Errorf("Server.RateLimit = %d, want 600", cfg.Server.RateLimit)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Database.MaxConnections != 25 {
		t.Errorf("Database.MaxConnections = %d, want 25", cfg.Database.MaxConnections)
	}
	if cfg.Database.ConnectionMaxLifetime != 5*time.Minute {
		t.Errorf("Database.ConnectionMaxLifetime = %v, want 5m", cfg.Database.ConnectionMaxLifetime)
	}
	if cfg.Timeseries.AggregationEngine != EngineInProcess {
		t.Errorf("Timeseries.AggregationEngine = %q, want %q", cfg.Timeseries.AggregationEngine, EngineInProcess)
	}
	if cfg.Timeseries.ResolutionEpsilon != 1e-9 {
		t.Errorf("Timeseries.ResolutionEpsilon = %v, want 1e-9", cfg.Timeseries.ResolutionEpsilon)
	}
	if cfg.Timeseries.FetchConcurrency != 4 {
		t.Errorf("Timeseries.FetchConcurrency = %d, want 4", cfg.Timeseries.FetchConcurrency)
	}
	if cfg.MQTT.Enabled() {
		t.Error("MQTT should be disabled without MQTT_BROKER_URL")
	}
	if cfg.MQTT.KeepAlive != 30 {
		t.Errorf("MQTT.KeepAlive = %d, want 30", cfg.MQTT.KeepAlive)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
}

func TestLoad_TimeseriesConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    TimeseriesConfig
	}{
		{
			name: "sql engine with custom tuning",
			envVars: map[string]string{
				"TS_AGGREGATION_ENGINE": "sql",
				"TS_RESOLUTION_EPSILON": "0.001",
				"TS_FETCH_CONCURRENCY":  "16",
				"TS_INGEST_TIMEOUT":     "3s",
			},
			want: TimeseriesConfig{
				AggregationEngine: EngineSQL,
				ResolutionEpsilon: 0.001,
				FetchConcurrency:  16,
				IngestTimeout:     3 * time.Second,
			},
		},
		{
			name: "engine name is case insensitive",
			envVars: map[string]string{
				"TS_AGGREGATION_ENGINE": "InProcess",
			},
			want: TimeseriesConfig{
				AggregationEngine: EngineInProcess,
				ResolutionEpsilon: 1e-9,
				FetchConcurrency:  4,
				IngestTimeout:     10 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanTimeseriesEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Timeseries != tt.want {
				t.Errorf("Timeseries = %+v, want %+v", cfg.Timeseries, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	cleanTimeseriesEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9090\"\nstorage_driver: sqlite\nsqlite_path: /tmp/ts.db\nmqtt_broker_url: mqtt://broker:1883\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment wins over the file
	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "7070")
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Database.SQLitePath != "/tmp/ts.db" {
		t.Errorf("Database.SQLitePath = %q, want /tmp/ts.db", cfg.Database.SQLitePath)
	}
	if !cfg.MQTT.Enabled() {
		t.Error("MQTT should be enabled when a broker URL is configured")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:     ServerConfig{RateLimit: 100},
			Database:   DatabaseConfig{Driver: DriverPostgres},
			Timeseries: TimeseriesConfig{AggregationEngine: EngineInProcess, FetchConcurrency: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid postgres config",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name: "valid sqlite config",
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
				c.Database.SQLitePath = "ts.db"
			},
			wantErr: false,
		},
		{
			name: "invalid - sqlite without path",
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
			},
			wantErr: true,
			errMsg:  "SQLITE_PATH is required when STORAGE_DRIVER=sqlite",
		},
		{
			name: "invalid - unknown driver",
			mutate: func(c *Config) {
				c.Database.Driver = "mysql"
			},
			wantErr: true,
			errMsg:  `unsupported STORAGE_DRIVER "mysql"`,
		},
		{
			name: "invalid - unknown engine",
			mutate: func(c *Config) {
				c.Timeseries.AggregationEngine = "numpy"
			},
			wantErr: true,
			errMsg:  `unsupported TS_AGGREGATION_ENGINE "numpy"`,
		},
		{
			name: "invalid - zero rate limit",
			mutate: func(c *Config) {
				c.Server.RateLimit = 0
			},
			wantErr: true,
			errMsg:  "RATE_LIMIT_PER_MINUTE must be positive",
		},
		{
			name: "invalid - zero concurrency",
			mutate: func(c *Config) {
				c.Timeseries.FetchConcurrency = 0
			},
			wantErr: true,
			errMsg:  "TS_FETCH_CONCURRENCY must be positive",
		},
		{
			name: "invalid - negative epsilon",
			mutate: func(c *Config) {
				c.Timeseries.ResolutionEpsilon = -1
			},
			wantErr: true,
			errMsg:  "TS_RESOLUTION_EPSILON must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Validate() error message = %q, want %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cleanTimeseriesEnv(t)
	t.Setenv("STORAGE_DRIVER", "oracle")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for unsupported driver")
	}
	if err.Error() != `unsupported STORAGE_DRIVER "oracle"` {
		t.Errorf("Load() error message = %q", err.Error())
	}
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres URL wins",
			cfg:  DatabaseConfig{Driver: DriverPostgres, URL: "postgres://u:p@db/ts", Host: "ignored"},
			want: "postgres://u:p@db/ts",
		},
		{
			name: "postgres from parts",
			cfg: DatabaseConfig{
				Driver: DriverPostgres, Host: "db", Port: "5432", User: "u",
				Password: "p", Name: "ts", SSLMode: "disable",
			},
			want: "host=db port=5432 user=u password=p dbname=ts sslmode=disable",
		},
		{
			name: "sqlite file with pragmas",
			cfg:  DatabaseConfig{Driver: DriverSQLite, SQLitePath: "/var/lib/ts.db"},
			want: "file:/var/lib/ts.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ConnectionString(); got != tt.want {
				t.Errorf("ConnectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_JWTSecretUsesGetSecret(t *testing.T) {
	cleanTimeseriesEnv(t)
	t.Setenv("JWT_SECRET", "direct-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "direct-secret" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "direct-secret")
	}
}

// cleanTimeseriesEnv clears every variable Load reads for the duration of the test
func cleanTimeseriesEnv(t *testing.T) {
	t.Helper()
	keys := []string{"CONFIG_FILE", "DATABASE_URL", "MQTT_BROKER_URL", "JWT_SECRET", "JWT_SECRET_FILE", "DB_PASSWORD_FILE"}
	for key := range defaults {
		keys = append(keys, key)
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			t.Setenv(key, value) // registers restore on cleanup
			os.Unsetenv(key)
		}
	}
}
