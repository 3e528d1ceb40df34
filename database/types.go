/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Schema strategies. Exactly one is active per process: direct issues
// CREATE TABLE IF NOT EXISTS from the registry, ledger replays the declared
// migration steps and records them in the schema_migrations table.
const (
	StrategyDirect = "direct"
	StrategyLedger = "ledger"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection, initializing the schema, seeding data, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	InitSchema(ctx context.Context) error
	InitData(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// AbstractDatabaseConfigProvider exposes configuration loading.
type AbstractDatabaseConfigProvider interface {
	ConfigLoader() *Config
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `json:"type"` // postgres、mysql、sqlite
	Host                string        `json:"host"`
	Port                int           `json:"port"`
	Username            string        `json:"username"`
	Password            string        `json:"password"`
	DBName              string        `json:"dbname"`
	SSLMode             string        `json:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log"`
	SlowQueryTime       time.Duration `json:"slow_query_time"`
	AutoCreate          bool          `json:"auto_create"`
	Charset             string        `json:"charset"` // MySQL:utf8mb4  、Postgres:UTF8
	Template            string        `json:"template"`
}

// ProberConfig bounds the startup readiness probe. The probe retries a
// trivial query at a fixed interval until the database answers, the attempt
// budget runs out, or the elapsed budget runs out.
type ProberConfig struct {
	Interval    time.Duration `json:"interval"`
	MaxAttempts int           `json:"max_attempts"`
	MaxElapsed  time.Duration `json:"max_elapsed"`
}

// SchemaConfig selects the schema initialization strategy.
type SchemaConfig struct {
	Strategy        string `json:"strategy"` // direct or ledger
	ApplyOnStartup  bool   `json:"apply_on_startup"`
	LedgerTableName string `json:"ledger_table_name"`
}

// BootstrapConfig describes the initial superuser created on first startup.
// Empty values skip the seed step.
type BootstrapConfig struct {
	SuperuserEmail    string `json:"superuser_email"`
	SuperuserPassword string `json:"superuser_password"`
}

// DataInitConfig controls SQL file seeding and environment selection.
type DataInitConfig struct {
	AutoInitOnStartup   bool   `json:"auto_init_on_startup"`
	AutoInitOnMigration bool   `json:"auto_init_on_migration"`
	Filepath            string `json:"filepath"`
	Environment         string `json:"environment"`
}

// Config aggregates connection, probe, schema, and seed settings.
type Config struct {
	ConnectionConfig ConnectionConfig `json:"connection_config"`
	ProberConfig     ProberConfig     `json:"prober_config"`
	SchemaConfig     SchemaConfig     `json:"schema_config"`
	BootstrapConfig  BootstrapConfig  `json:"bootstrap_config"`
	DataInitConfig   DataInitConfig   `json:"data_init_config"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultProberConfig matches the historical startup budget: one probe per
// second, at most 300 attempts, at most five minutes in total.
func DefaultProberConfig() *ProberConfig {
	return &ProberConfig{
		Interval:    time.Second,
		MaxAttempts: 300,
		MaxElapsed:  time.Minute * 5,
	}
}

// DefaultConfig returns a full configuration with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		ProberConfig:     *DefaultProberConfig(),
		SchemaConfig: SchemaConfig{
			Strategy:        StrategyLedger,
			ApplyOnStartup:  true,
			LedgerTableName: "schema_migrations",
		},
		DataInitConfig: DataInitConfig{
			Environment: "prod",
			Filepath:    "configs/sql",
		},
	}
}
