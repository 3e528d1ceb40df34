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
	"fmt"

	"github.com/uptrace/bun"
)

var (
	globalFactory *BaseDatabaseFactory
	globalConfig  *Config
	DB            *bun.DB
)

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return DB
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// GetDatabaseFactory returns the global database factory.
func GetDatabaseFactory() *BaseDatabaseFactory {
	return globalFactory
}

// InitDB initializes the global database using the provided configuration.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	return InitDatabaseWithOptions(cfg, cfg.SchemaConfig.ApplyOnStartup)
}

// InitDatabaseWithOptions initializes the database and optionally applies
// the schema with the configured strategy.
func InitDatabaseWithOptions(cfg *Config, applySchema bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	globalConfig = cfg
	globalFactory = NewDatabaseFactory()
	manager, err := globalFactory.CreateFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	ctx := context.Background()
	if err := globalFactory.InitializeDatabase(ctx, applySchema); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	DB = manager.GetDB()
	return DB, nil
}

// CloseDB closes the global database connection (backward compatibility).
func CloseDB() error {
	if globalFactory != nil {
		return globalFactory.Close()
	}
	return nil
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory != nil {
		return globalFactory.GetHealthStatus(ctx)
	}
	return &HealthStatus{
		Healthy:   false,
		Connected: false,
		LastError: "Database not initialized",
	}
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if globalFactory != nil {
		return globalFactory.GetStats()
	}
	return &DBStats{}
}

// InitSchema applies the schema with the configured strategy.
func InitSchema() error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	return manager.InitSchema(context.Background())
}

// RollbackSchemaTo reverts ledger migrations down to the given step ID.
// Only meaningful with the ledger strategy.
func RollbackSchemaTo(targetID string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	var logger Logger
	if globalFactory != nil {
		logger = globalFactory.logger
	}
	mm := NewMigrationManager(db, logger)
	if globalConfig != nil {
		mm.SetLedgerTable(globalConfig.SchemaConfig.LedgerTableName)
	}
	return mm.RollbackTo(context.Background(), targetID)
}

// InitData seeds the superuser and replays SQL files for the configured
// environment.
func InitData() error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	return manager.InitData(context.Background())
}

// InitDataWithSQL replays the SQL files of the given environment,
// regardless of the configured one.
func InitDataWithSQL(environment string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database instance not initialized")
	}

	filepath := "configs/sql"
	if globalConfig != nil && globalConfig.DataInitConfig.Filepath != "" {
		filepath = globalConfig.DataInitConfig.Filepath
	}

	sqlManager := NewSQLInitManager(db, environment, nil)
	sqlManager.SetSQLRootPath(filepath)
	return sqlManager.InitData(context.Background())
}
