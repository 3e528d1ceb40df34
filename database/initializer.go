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

	"github.com/tomoncle/ideahub/schema"
)

// SchemaInitializer applies the registry schema with plain CREATE TABLE
// IF NOT EXISTS statements. It never records what it did, rerunning it is
// always safe, and concurrent instances may race without harm because
// "already exists" failures are treated as success.
type SchemaInitializer struct {
	db       *bun.DB
	registry *schema.Registry
	logger   Logger
}

// NewSchemaInitializer creates an initializer over the platform registry.
func NewSchemaInitializer(db *bun.DB, logger Logger) *SchemaInitializer {
	if logger == nil {
		logger = GetLogger()
	}
	return &SchemaInitializer{
		db:       db,
		registry: schema.Default(),
		logger:   logger,
	}
}

// SetRegistry replaces the table registry, mainly for tests.
func (si *SchemaInitializer) SetRegistry(registry *schema.Registry) {
	si.registry = registry
}

// CreateAll creates every registered table and its indexes in registration
// order, so parents exist before the tables referencing them.
func (si *SchemaInitializer) CreateAll(ctx context.Context) error {
	tables := si.registry.Tables()
	dialectName := si.db.Dialect().Name()

	si.logger.Info("Creating schema", "strategy", StrategyDirect, "tables", len(tables), "dialect", dialectName.String())

	for _, t := range tables {
		for _, stmt := range schema.CreateSQL(t, dialectName) {
			if _, err := si.db.ExecContext(ctx, stmt); err != nil {
				if ok, sqlErr := IsSqlError(err); ok && (sqlErr == ExistTableErr || sqlErr == ExistIndexErr) {
					si.logger.Debug("Schema object already exists, skipping", "table", t.Name, "error", err)
					continue
				}
				return fmt.Errorf("%w: create table %s: %v", ErrSchemaConflict, t.Name, err)
			}
		}
	}

	si.logger.Info("Schema creation completed", "tables", len(tables))
	return nil
}
