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

package schema

import (
	"strings"
	"testing"

	"github.com/uptrace/bun/dialect"
)

func ddlFixture() *Table {
	return &Table{
		Name: "ideas",
		Columns: []Column{
			{Name: "id", Type: TypeUUID, PK: true},
			{Name: "title", Type: TypeString, Size: 255},
			{Name: "status", Type: TypeString, Size: 50, Default: "'draft'"},
			{Name: "is_public", Type: TypeBool, Default: "false"},
			{Name: "team_id", Type: TypeUUID, Nullable: true},
			{Name: "created_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
		},
		ForeignKeys: []ForeignKey{
			{Column: "team_id", RefTable: "teams", RefColumn: "id", OnDelete: SetNull},
		},
		Indexes: []Index{{Columns: []string{"title"}, Unique: true}},
	}
}

func TestCreateTableSQL(t *testing.T) {
	tb := ddlFixture()

	cases := []struct {
		dialect dialect.Name
		want    string
	}{
		{
			dialect.PG,
			`CREATE TABLE IF NOT EXISTS "ideas" (` +
				`"id" uuid NOT NULL, ` +
				`"title" varchar(255) NOT NULL, ` +
				`"status" varchar(50) NOT NULL DEFAULT 'draft', ` +
				`"is_public" boolean NOT NULL DEFAULT false, ` +
				`"team_id" uuid, ` +
				`"created_at" timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP, ` +
				`PRIMARY KEY ("id"), ` +
				`CONSTRAINT "fk_ideas_team_id" FOREIGN KEY ("team_id") REFERENCES "teams" ("id") ON DELETE SET NULL)`,
		},
		{
			dialect.MySQL,
			"CREATE TABLE IF NOT EXISTS `ideas` (" +
				"`id` char(36) NOT NULL, " +
				"`title` varchar(255) NOT NULL, " +
				"`status` varchar(50) NOT NULL DEFAULT 'draft', " +
				"`is_public` tinyint(1) NOT NULL DEFAULT false, " +
				"`team_id` char(36), " +
				"`created_at` datetime NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
				"PRIMARY KEY (`id`), " +
				"CONSTRAINT `fk_ideas_team_id` FOREIGN KEY (`team_id`) REFERENCES `teams` (`id`) ON DELETE SET NULL)",
		},
		{
			dialect.SQLite,
			`CREATE TABLE IF NOT EXISTS "ideas" (` +
				`"id" text NOT NULL, ` +
				`"title" varchar(255) NOT NULL, ` +
				`"status" varchar(50) NOT NULL DEFAULT 'draft', ` +
				`"is_public" boolean NOT NULL DEFAULT false, ` +
				`"team_id" text, ` +
				`"created_at" timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP, ` +
				`PRIMARY KEY ("id"), ` +
				`CONSTRAINT "fk_ideas_team_id" FOREIGN KEY ("team_id") REFERENCES "teams" ("id") ON DELETE SET NULL)`,
		},
	}
	for _, c := range cases {
		if got := CreateTableSQL(tb, c.dialect); got != c.want {
			t.Errorf("%s:\n got %s\nwant %s", c.dialect, got, c.want)
		}
	}
}

func TestCreateTableSQLCompositeKey(t *testing.T) {
	tb := &Table{
		Name: "team_members",
		Columns: []Column{
			{Name: "team_id", Type: TypeUUID, PK: true},
			{Name: "user_id", Type: TypeUUID, PK: true},
		},
	}
	got := CreateTableSQL(tb, dialect.PG)
	if !strings.Contains(got, `PRIMARY KEY ("team_id", "user_id")`) {
		t.Fatalf("composite key missing: %s", got)
	}
}

func TestCreateIndexSQL(t *testing.T) {
	tb := ddlFixture()

	unique := tb.Indexes[0]
	if got, want := CreateIndexSQL(tb, unique, dialect.PG),
		`CREATE UNIQUE INDEX IF NOT EXISTS "ix_ideas_title" ON "ideas" ("title")`; got != want {
		t.Errorf("pg:\n got %s\nwant %s", got, want)
	}
	// MySQL rejects IF NOT EXISTS on indexes, reruns rely on the
	// duplicate-index error being classified as benign.
	if got, want := CreateIndexSQL(tb, unique, dialect.MySQL),
		"CREATE UNIQUE INDEX `ix_ideas_title` ON `ideas` (`title`)"; got != want {
		t.Errorf("mysql:\n got %s\nwant %s", got, want)
	}

	plain := Index{Columns: []string{"status", "team_id"}}
	if got, want := CreateIndexSQL(tb, plain, dialect.SQLite),
		`CREATE INDEX IF NOT EXISTS "ix_ideas_status_team_id" ON "ideas" ("status", "team_id")`; got != want {
		t.Errorf("sqlite:\n got %s\nwant %s", got, want)
	}

	named := Index{Name: "ideas_status_key", Columns: []string{"status"}}
	if got := CreateIndexSQL(tb, named, dialect.PG); !strings.Contains(got, `"ideas_status_key"`) {
		t.Errorf("explicit index name ignored: %s", got)
	}
}

func TestCreateSQLStatementOrder(t *testing.T) {
	tb := ddlFixture()
	stmts := CreateSQL(tb, dialect.PG)
	if len(stmts) != 2 {
		t.Fatalf("CreateSQL returned %d statements, want 2", len(stmts))
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS") {
		t.Fatalf("first statement is not the table: %s", stmts[0])
	}
	if !strings.HasPrefix(stmts[1], "CREATE UNIQUE INDEX") {
		t.Fatalf("second statement is not the index: %s", stmts[1])
	}
}

func TestDropTableSQL(t *testing.T) {
	if got, want := DropTableSQL("ideas", dialect.PG), `DROP TABLE IF EXISTS "ideas"`; got != want {
		t.Errorf("pg: got %s, want %s", got, want)
	}
	if got, want := DropTableSQL("ideas", dialect.MySQL), "DROP TABLE IF EXISTS `ideas`"; got != want {
		t.Errorf("mysql: got %s, want %s", got, want)
	}
}

func TestSQLTypeMapping(t *testing.T) {
	cases := []struct {
		column  Column
		dialect dialect.Name
		want    string
	}{
		{Column{Type: TypeUUID}, dialect.PG, "uuid"},
		{Column{Type: TypeUUID}, dialect.MySQL, "char(36)"},
		{Column{Type: TypeUUID}, dialect.SQLite, "text"},
		{Column{Type: TypeString, Size: 100}, dialect.PG, "varchar(100)"},
		{Column{Type: TypeText}, dialect.MySQL, "text"},
		{Column{Type: TypeBool}, dialect.PG, "boolean"},
		{Column{Type: TypeBool}, dialect.MySQL, "tinyint(1)"},
		{Column{Type: TypeInt}, dialect.PG, "integer"},
		{Column{Type: TypeInt}, dialect.MySQL, "int"},
		{Column{Type: TypeFloat}, dialect.PG, "double precision"},
		{Column{Type: TypeFloat}, dialect.MySQL, "double"},
		{Column{Type: TypeFloat}, dialect.SQLite, "real"},
		{Column{Type: TypeTimestamp}, dialect.PG, "timestamptz"},
		{Column{Type: TypeTimestamp}, dialect.MySQL, "datetime"},
		{Column{Type: TypeTimestamp}, dialect.SQLite, "timestamp"},
	}
	for _, c := range cases {
		if got := sqlType(c.column, c.dialect); got != c.want {
			t.Errorf("sqlType(%d, %s) = %q, want %q", int(c.column.Type), c.dialect, got, c.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got, want := quoteIdent(`we"ird`, dialect.PG), `"we""ird"`; got != want {
		t.Errorf("pg: got %s, want %s", got, want)
	}
	if got, want := quoteIdent("we`ird", dialect.MySQL), "`we``ird`"; got != want {
		t.Errorf("mysql: got %s, want %s", got, want)
	}
}
