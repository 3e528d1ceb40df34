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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML files. Durations are written as
// strings such as "10s" or "1h". Pointer fields distinguish "absent" from
// an explicit false.
type fileConfig struct {
	Database struct {
		Type                string `yaml:"type"`
		Host                string `yaml:"host"`
		Port                int    `yaml:"port"`
		Username            string `yaml:"username"`
		Password            string `yaml:"password"`
		DBName              string `yaml:"dbname"`
		SSLMode             string `yaml:"sslmode"`
		MaxIdleConns        int    `yaml:"max_idle_conns"`
		MaxOpenConns        int    `yaml:"max_open_conns"`
		ConnMaxLifetime     string `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime     string `yaml:"conn_max_idle_time"`
		ConnectTimeout      string `yaml:"connect_timeout"`
		ReadTimeout         string `yaml:"read_timeout"`
		WriteTimeout        string `yaml:"write_timeout"`
		EnableReconnect     *bool  `yaml:"enable_reconnect"`
		ReconnectInterval   string `yaml:"reconnect_interval"`
		MaxReconnectTries   int    `yaml:"max_reconnect_tries"`
		HealthCheckInterval string `yaml:"health_check_interval"`
		EnableQueryLog      *bool  `yaml:"enable_query_log"`
		SlowQueryTime       string `yaml:"slow_query_time"`
		AutoCreate          *bool  `yaml:"auto_create"`
		Charset             string `yaml:"charset"`
	} `yaml:"database"`
	Prober struct {
		Interval    string `yaml:"interval"`
		MaxAttempts int    `yaml:"max_attempts"`
		MaxElapsed  string `yaml:"max_elapsed"`
	} `yaml:"prober"`
	Schema struct {
		Strategy        string `yaml:"strategy"`
		ApplyOnStartup  *bool  `yaml:"apply_on_startup"`
		LedgerTableName string `yaml:"ledger_table_name"`
	} `yaml:"schema"`
	Bootstrap struct {
		SuperuserEmail    string `yaml:"superuser_email"`
		SuperuserPassword string `yaml:"superuser_password"`
	} `yaml:"bootstrap"`
	DataInit struct {
		AutoInitOnStartup   *bool  `yaml:"auto_init_on_startup"`
		AutoInitOnMigration *bool  `yaml:"auto_init_on_migration"`
		Filepath            string `yaml:"filepath"`
		Environment         string `yaml:"environment"`
	} `yaml:"data_init"`
}

// LoadConfig reads a YAML file and overlays it onto DefaultConfig, keys
// missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := DefaultConfig()
	cc := &cfg.ConnectionConfig
	setString(&cc.Type, fc.Database.Type)
	setString(&cc.Host, fc.Database.Host)
	setInt(&cc.Port, fc.Database.Port)
	setString(&cc.Username, fc.Database.Username)
	setString(&cc.Password, fc.Database.Password)
	setString(&cc.DBName, fc.Database.DBName)
	setString(&cc.SSLMode, fc.Database.SSLMode)
	setInt(&cc.MaxIdleConns, fc.Database.MaxIdleConns)
	setInt(&cc.MaxOpenConns, fc.Database.MaxOpenConns)
	setString(&cc.Charset, fc.Database.Charset)
	setInt(&cc.MaxReconnectTries, fc.Database.MaxReconnectTries)
	setBool(&cc.EnableReconnect, fc.Database.EnableReconnect)
	setBool(&cc.EnableQueryLog, fc.Database.EnableQueryLog)
	setBool(&cc.AutoCreate, fc.Database.AutoCreate)
	for _, d := range []struct {
		dst *time.Duration
		val string
	}{
		{&cc.ConnMaxLifetime, fc.Database.ConnMaxLifetime},
		{&cc.ConnMaxIdleTime, fc.Database.ConnMaxIdleTime},
		{&cc.ConnectTimeout, fc.Database.ConnectTimeout},
		{&cc.ReadTimeout, fc.Database.ReadTimeout},
		{&cc.WriteTimeout, fc.Database.WriteTimeout},
		{&cc.ReconnectInterval, fc.Database.ReconnectInterval},
		{&cc.HealthCheckInterval, fc.Database.HealthCheckInterval},
		{&cc.SlowQueryTime, fc.Database.SlowQueryTime},
		{&cfg.ProberConfig.Interval, fc.Prober.Interval},
		{&cfg.ProberConfig.MaxElapsed, fc.Prober.MaxElapsed},
	} {
		if err := setDuration(d.dst, d.val); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	setInt(&cfg.ProberConfig.MaxAttempts, fc.Prober.MaxAttempts)

	setString(&cfg.SchemaConfig.Strategy, fc.Schema.Strategy)
	setBool(&cfg.SchemaConfig.ApplyOnStartup, fc.Schema.ApplyOnStartup)
	setString(&cfg.SchemaConfig.LedgerTableName, fc.Schema.LedgerTableName)

	setString(&cfg.BootstrapConfig.SuperuserEmail, fc.Bootstrap.SuperuserEmail)
	setString(&cfg.BootstrapConfig.SuperuserPassword, fc.Bootstrap.SuperuserPassword)

	setBool(&cfg.DataInitConfig.AutoInitOnStartup, fc.DataInit.AutoInitOnStartup)
	setBool(&cfg.DataInitConfig.AutoInitOnMigration, fc.DataInit.AutoInitOnMigration)
	setString(&cfg.DataInitConfig.Filepath, fc.DataInit.Filepath)
	setString(&cfg.DataInitConfig.Environment, fc.DataInit.Environment)
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
