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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSQLFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s error: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s error: %v", name, err)
	}
}

func TestInitDataRunsFilesInOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	root := t.TempDir()

	writeSQLFile(t, filepath.Join(root, "common"), "01_base.sql", `
-- base schema for the replay probe
CREATE TABLE seq (n integer PRIMARY KEY AUTOINCREMENT, tag text NOT NULL);
INSERT INTO seq (tag) VALUES ('common');
`)
	writeSQLFile(t, filepath.Join(root, "environments", "test"), "05_alpha.sql",
		`INSERT INTO seq (tag) VALUES ('alpha');`)
	writeSQLFile(t, filepath.Join(root, "environments", "test"), "20_beta.sql",
		`INSERT INTO seq (tag) VALUES ('beta-{{.ENVIRONMENT}}');`)
	// other environments and non-SQL files are ignored
	writeSQLFile(t, filepath.Join(root, "environments", "prod"), "99_prod.sql",
		`INSERT INTO seq (tag) VALUES ('prod');`)
	writeSQLFile(t, filepath.Join(root, "common"), "notes.txt", "not sql")

	sm := NewSQLInitManager(db, "test", nil)
	sm.SetSQLRootPath(root)
	if err := sm.InitData(ctx); err != nil {
		t.Fatalf("InitData error: %v", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT tag FROM seq ORDER BY n`)
	if err != nil {
		t.Fatalf("query seq error: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			t.Fatalf("scan error: %v", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}

	want := []string{"common", "alpha", "beta-test"}
	if len(tags) != len(want) {
		t.Fatalf("replayed tags %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("replayed tags %v, want %v", tags, want)
		}
	}
}

func TestInitDataMissingRoot(t *testing.T) {
	db := openTestDB(t)

	sm := NewSQLInitManager(db, "test", nil)
	sm.SetSQLRootPath(filepath.Join(t.TempDir(), "nope"))
	if err := sm.InitData(context.Background()); err != nil {
		t.Fatalf("missing SQL root should be a no-op, got: %v", err)
	}
}

func TestInitDataFailingFile(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()

	writeSQLFile(t, filepath.Join(root, "common"), "01_bad.sql",
		`INSERT INTO missing_table (x) VALUES (1);`)

	sm := NewSQLInitManager(db, "test", nil)
	sm.SetSQLRootPath(root)
	err := sm.InitData(context.Background())
	if err == nil {
		t.Fatal("InitData should surface a failing file")
	}
	if !strings.Contains(err.Error(), "01_bad.sql") {
		t.Fatalf("error does not name the failing file: %v", err)
	}
}

func TestParseFileOrder(t *testing.T) {
	sm := NewSQLInitManager(nil, "test", nil)

	cases := []struct {
		name string
		want int
	}{
		{"01_users.sql", 1},
		{"20_seed.sql", 20},
		{"0005_data.sql", 5},
		{"seed.sql", 999},
		{"_10_seed.sql", 999},
	}
	for _, c := range cases {
		if got := sm.parseFileOrder(c.name); got != c.want {
			t.Errorf("parseFileOrder(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestSplitSQLStatements(t *testing.T) {
	sm := NewSQLInitManager(nil, "test", nil)

	content := `
-- leading comment
CREATE TABLE a (x integer);
INSERT INTO a (x)
VALUES (1);

-- trailing statement without a semicolon
INSERT INTO a (x) VALUES (2)
`
	stmts := sm.splitSQLStatements(content)
	if len(stmts) != 3 {
		t.Fatalf("split into %d statements, want 3: %q", len(stmts), stmts)
	}
	if stmts[1] != "INSERT INTO a (x) VALUES (1);" {
		t.Errorf("multi-line statement not joined: %q", stmts[1])
	}
	if strings.Contains(stmts[0], "--") {
		t.Errorf("comment leaked into statement: %q", stmts[0])
	}
}
