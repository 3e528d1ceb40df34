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
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/ideahub/schema"
)

// openTestDB opens a file backed sqlite database in a per-test directory.
// A single connection keeps sqlite's writer locking out of the way.
func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testRegistry declares a two-table schema with a foreign key and a unique
// index, enough surface to drive both schema strategies.
func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	tables := []*schema.Table{
		{
			Name: "accounts",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeUUID, PK: true},
				{Name: "email", Type: schema.TypeString, Size: 255},
				{Name: "is_active", Type: schema.TypeBool, Default: "true"},
			},
			Indexes: []schema.Index{{Columns: []string{"email"}, Unique: true}},
		},
		{
			Name: "posts",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeUUID, PK: true},
				{Name: "title", Type: schema.TypeString, Size: 255},
				{Name: "account_id", Type: schema.TypeUUID},
			},
			ForeignKeys: []schema.ForeignKey{
				{Column: "account_id", RefTable: "accounts", RefColumn: "id", OnDelete: schema.Cascade},
			},
		},
	}
	for _, tab := range tables {
		if err := r.Register(tab); err != nil {
			t.Fatalf("register %s error: %v", tab.Name, err)
		}
	}
	return r
}
