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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/uptrace/bun"
)

func execStep(stmt string) MigrationFunc {
	return func(ctx context.Context, db bun.IDB) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
}

func testSteps() []MigrationStep {
	return []MigrationStep{
		{
			ID:   "0001_create_accounts",
			Name: "create accounts",
			Up:   execStep(`CREATE TABLE accounts (id text NOT NULL, email varchar(255) NOT NULL, PRIMARY KEY (id))`),
			Down: execStep(`DROP TABLE accounts`),
		},
		{
			ID:     "0002_create_posts",
			Parent: "0001_create_accounts",
			Name:   "create posts",
			Up:     execStep(`CREATE TABLE posts (id text NOT NULL, title varchar(255) NOT NULL, account_id text NOT NULL, PRIMARY KEY (id))`),
			Down:   execStep(`DROP TABLE posts`),
		},
		{
			ID:     "0003_add_post_notes",
			Parent: "0002_create_posts",
			Name:   "add post notes",
			Up:     execStep(`ALTER TABLE posts ADD COLUMN note text`),
			Down:   execStep(`ALTER TABLE posts DROP COLUMN note`),
		},
	}
}

func tableExists(ctx context.Context, t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master query error: %v", err)
	}
	return n > 0
}

func appliedIDs(ctx context.Context, t *testing.T, mm *MigrationManager) []string {
	t.Helper()
	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("GetAppliedMigrations error: %v", err)
	}
	ids := make([]string, len(applied))
	for i, m := range applied {
		ids[i] = m.ID
	}
	return ids
}

func TestValidateChain(t *testing.T) {
	noop := func(ctx context.Context, db bun.IDB) error { return nil }

	cases := []struct {
		name    string
		steps   []MigrationStep
		wantErr string
	}{
		{name: "empty chain", steps: nil},
		{name: "single step", steps: []MigrationStep{{ID: "0001_a", Up: noop}}},
		{name: "linear chain", steps: []MigrationStep{
			{ID: "0001_a", Up: noop},
			{ID: "0002_b", Parent: "0001_a", Up: noop},
		}},
		{
			name:    "missing id",
			steps:   []MigrationStep{{Up: noop}},
			wantErr: "has no id",
		},
		{
			name:    "missing up",
			steps:   []MigrationStep{{ID: "0001_a"}},
			wantErr: "has no up function",
		},
		{
			name: "duplicate id",
			steps: []MigrationStep{
				{ID: "0001_a", Up: noop},
				{ID: "0001_a", Parent: "0001_a", Up: noop},
			},
			wantErr: "duplicate migration id",
		},
		{
			name:    "first step with parent",
			steps:   []MigrationStep{{ID: "0001_a", Parent: "0000_x", Up: noop}},
			wantErr: "must not have a parent",
		},
		{
			name: "broken link",
			steps: []MigrationStep{
				{ID: "0001_a", Up: noop},
				{ID: "0002_b", Parent: "0001_a", Up: noop},
				{ID: "0003_c", Parent: "0001_a", Up: noop},
			},
			wantErr: "broken migration chain at 0003_c",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateChain(c.steps)
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateChain error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateChain = nil, want error containing %q", c.wantErr)
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("ValidateChain = %q, want error containing %q", err, c.wantErr)
			}
		})
	}
}

func TestRunMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	mm.SetSteps(testSteps())
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	ids := appliedIDs(ctx, t, mm)
	want := []string{"0001_create_accounts", "0002_create_posts", "0003_add_post_notes"}
	if len(ids) != len(want) {
		t.Fatalf("ledger has %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ledger has %v, want %v", ids, want)
		}
	}

	// the migrated schema must be usable, note column included
	if _, err := db.ExecContext(ctx,
		`INSERT INTO posts (id, title, account_id, note) VALUES (?, ?, ?, ?)`,
		"p-1", "hello", "a-1", "first"); err != nil {
		t.Fatalf("insert post error: %v", err)
	}

	// rerunning is a no-op
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations error: %v", err)
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != len(want) {
		t.Fatalf("ledger grew on rerun: %v", ids)
	}
}

func TestRunMigrationsResumes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	steps := testSteps()
	mm := NewMigrationManager(db, nil)
	mm.SetSteps(steps[:1])
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	// later deploys extend the chain, only the tail is applied
	mm.SetSteps(steps)
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("extended RunMigrations error: %v", err)
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 3 {
		t.Fatalf("ledger has %v, want all three steps", ids)
	}
}

func TestRunMigrationsLedgerMismatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	mm.SetSteps(testSteps())
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	// a ledger row the declared chain knows nothing about
	if _, err := db.ExecContext(ctx,
		`INSERT INTO schema_migrations (id, name, applied_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		"9999_mystery", "mystery"); err != nil {
		t.Fatalf("insert foreign ledger row error: %v", err)
	}

	err := mm.RunMigrations(ctx)
	if err == nil {
		t.Fatal("RunMigrations should refuse a diverged ledger")
	}
	if !errors.Is(err, ErrStepOrdering) {
		t.Fatalf("error %v does not wrap ErrStepOrdering", err)
	}
}

func TestRunMigrationsStepAtomicity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	steps := testSteps()
	broken := steps[1]
	broken.Up = func(ctx context.Context, idb bun.IDB) error {
		if _, err := idb.ExecContext(ctx,
			`CREATE TABLE posts (id text NOT NULL, PRIMARY KEY (id))`); err != nil {
			return err
		}
		return fmt.Errorf("backfill failed")
	}

	mm := NewMigrationManager(db, nil)
	mm.SetSteps([]MigrationStep{steps[0], broken})
	err := mm.RunMigrations(ctx)
	if err == nil {
		t.Fatal("RunMigrations should surface the failing step")
	}
	if !strings.Contains(err.Error(), "0002_create_posts") {
		t.Fatalf("error does not name the failing step: %v", err)
	}

	// the failed step left nothing behind, neither the table nor a ledger row
	if tableExists(ctx, t, db, "posts") {
		t.Fatal("failed step leaked its table, transaction did not roll back")
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 1 || ids[0] != steps[0].ID {
		t.Fatalf("ledger after failure is %v, want only %s", ids, steps[0].ID)
	}

	// a fixed chain picks up from where it stopped
	mm.SetSteps(steps)
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations after fix error: %v", err)
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 3 {
		t.Fatalf("ledger after fix is %v, want all three steps", ids)
	}
}

func TestRollbackTo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	mm.SetSteps(testSteps())
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	if err := mm.RollbackTo(ctx, "0001_create_accounts"); err != nil {
		t.Fatalf("RollbackTo error: %v", err)
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 1 || ids[0] != "0001_create_accounts" {
		t.Fatalf("ledger after rollback is %v, want only the target", ids)
	}
	if tableExists(ctx, t, db, "posts") {
		t.Fatal("posts table survived its rollback")
	}
	if !tableExists(ctx, t, db, "accounts") {
		t.Fatal("accounts table was rolled back too far")
	}

	// an empty target reverts everything
	if err := mm.RollbackTo(ctx, ""); err != nil {
		t.Fatalf("full RollbackTo error: %v", err)
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 0 {
		t.Fatalf("ledger after full rollback is %v, want empty", ids)
	}
	if tableExists(ctx, t, db, "accounts") {
		t.Fatal("accounts table survived the full rollback")
	}

	if err := mm.RollbackTo(ctx, "0001_create_accounts"); err == nil {
		t.Fatal("rolling back to an unapplied step should fail")
	}
}

func TestRollbackRefusesIrreversibleStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	steps := testSteps()[:2]
	steps[1].Down = nil

	mm := NewMigrationManager(db, nil)
	mm.SetSteps(steps)
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	err := mm.RollbackTo(ctx, "")
	if err == nil {
		t.Fatal("RollbackTo across an irreversible step should fail")
	}
	if !errors.Is(err, ErrIrreversibleStep) {
		t.Fatalf("error %v does not wrap ErrIrreversibleStep", err)
	}

	// the refusal happens before any step is reverted
	if ids := appliedIDs(ctx, t, mm); len(ids) != 2 {
		t.Fatalf("ledger after refused rollback is %v, want both steps", ids)
	}
	if !tableExists(ctx, t, db, "accounts") || !tableExists(ctx, t, db, "posts") {
		t.Fatal("refused rollback still reverted a step")
	}
}

func TestSetLedgerTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	mm.SetSteps(testSteps()[:1])
	mm.SetLedgerTable("boot_migrations")
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	if !tableExists(ctx, t, db, "boot_migrations") {
		t.Fatal("configured ledger table was not created")
	}
	if tableExists(ctx, t, db, "schema_migrations") {
		t.Fatal("default ledger table created despite the override")
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != 1 {
		t.Fatalf("ledger has %v, want one row", ids)
	}
}

func TestPlatformChainIsValid(t *testing.T) {
	if err := ValidateChain(platformSteps()); err != nil {
		t.Fatalf("platform migration chain is invalid: %v", err)
	}
}

func TestRunPlatformMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	mm := NewMigrationManager(db, nil)
	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	for _, name := range []string{"users", "ideas", "comments", "audit_logs", "llm_processing_logs"} {
		if !tableExists(ctx, t, db, name) {
			t.Fatalf("platform table %s missing after migrations", name)
		}
	}
	if ids := appliedIDs(ctx, t, mm); len(ids) != len(platformSteps()) {
		t.Fatalf("ledger has %d rows, want %d", len(ids), len(platformSteps()))
	}

	if err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations error: %v", err)
	}
}
