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
	"fmt"
	"os"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/ideahub/schema"
)

// advisoryLockKey serializes migration runs on PostgreSQL. MySQL uses a
// named lock scoped to the current database, SQLite relies on its single
// writer.
const advisoryLockKey int64 = 1229213761

// migrationLockWait is the GET_LOCK timeout in seconds.
const migrationLockWait = 60

// Migration is a ledger row recording one applied step.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations,alias:m"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name"`
	AppliedAt time.Time `bun:"applied_at"`
}

// MigrationFunc is one side of a migration step, executed within the
// step's transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationStep is a node in the migration chain. Parent names the
// previous step's ID, the first step has an empty Parent. A nil Down
// marks the step as irreversible.
type MigrationStep struct {
	ID     string
	Parent string
	Name   string
	Up     MigrationFunc
	Down   MigrationFunc
}

// MigrationManager applies the declared step chain and records every
// applied step in a ledger table.
type MigrationManager struct {
	db          *bun.DB
	logger      Logger
	steps       []MigrationStep
	ledgerTable string
}

// NewMigrationManager constructs a manager over the platform step chain.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{
		db:          db,
		logger:      logger,
		steps:       platformSteps(),
		ledgerTable: "schema_migrations",
	}
}

// SetSteps replaces the step chain, mainly for tests.
func (mm *MigrationManager) SetSteps(steps []MigrationStep) {
	mm.steps = steps
}

// SetLedgerTable changes the name of the ledger table.
func (mm *MigrationManager) SetLedgerTable(name string) {
	if name != "" {
		mm.ledgerTable = name
	}
}

// ValidateChain checks that the steps form a single linear chain: unique
// non-empty IDs, the first step without a parent, every later step naming
// its predecessor. An empty chain is valid.
func ValidateChain(steps []MigrationStep) error {
	seen := make(map[string]bool, len(steps))
	for i, step := range steps {
		if step.ID == "" {
			return fmt.Errorf("migration step %d has no id", i)
		}
		if step.Up == nil {
			return fmt.Errorf("migration step %s has no up function", step.ID)
		}
		if seen[step.ID] {
			return fmt.Errorf("duplicate migration id: %s", step.ID)
		}
		seen[step.ID] = true
		if i == 0 {
			if step.Parent != "" {
				return fmt.Errorf("first migration %s must not have a parent, got %s", step.ID, step.Parent)
			}
			continue
		}
		if step.Parent != steps[i-1].ID {
			return fmt.Errorf("broken migration chain at %s: parent is %q, want %q", step.ID, step.Parent, steps[i-1].ID)
		}
	}
	return nil
}

// RunMigrations validates the chain, creates the ledger table if needed and
// applies every step the ledger does not record yet, in chain order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	// silent migration
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := ValidateChain(mm.steps); err != nil {
		return fmt.Errorf("invalid migration chain: %w", err)
	}

	if err := mm.createLedgerTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration ledger: %w", err)
	}

	prefix, err := mm.appliedPrefix(applied)
	if err != nil {
		return err
	}

	pending := mm.steps[prefix:]
	if len(pending) == 0 {
		mm.logger.Info("Database schema is up to date", "applied", prefix)
		return nil
	}

	mm.logger.Info("Applying migrations", "applied", prefix, "pending", len(pending))
	for _, step := range pending {
		if err := mm.applyStep(ctx, step); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", step.ID, err)
		}
	}

	mm.logger.Info("Database migrations completed!")
	return nil
}

// RollbackTo reverts applied steps after targetID, newest first. An empty
// targetID reverts everything. The request is refused outright when any
// step in the range has no Down function.
func (mm *MigrationManager) RollbackTo(ctx context.Context, targetID string) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := ValidateChain(mm.steps); err != nil {
		return fmt.Errorf("invalid migration chain: %w", err)
	}

	if err := mm.createLedgerTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration ledger: %w", err)
	}

	prefix, err := mm.appliedPrefix(applied)
	if err != nil {
		return err
	}

	keep := 0
	if targetID != "" {
		found := false
		for i, step := range mm.steps[:prefix] {
			if step.ID == targetID {
				keep = i + 1
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("rollback target %s is not an applied migration", targetID)
		}
	}

	pending := mm.steps[keep:prefix]
	if len(pending) == 0 {
		mm.logger.Info("Nothing to roll back")
		return nil
	}

	for _, step := range pending {
		if step.Down == nil {
			return fmt.Errorf("%w: %s has no down function", ErrIrreversibleStep, step.ID)
		}
	}

	for i := len(pending) - 1; i >= 0; i-- {
		if err := mm.revertStep(ctx, pending[i]); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", pending[i].ID, err)
		}
	}

	mm.logger.Info("Rollback completed", "reverted", len(pending))
	return nil
}

// GetAppliedMigrations returns ledger rows in application order.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var applied []Migration
	err := mm.db.NewSelect().
		Model(&applied).
		ModelTableExpr("? AS m", bun.Ident(mm.ledgerTable)).
		Order("m.applied_at ASC").
		Scan(ctx)
	return applied, err
}

// appliedPrefix verifies that the ledger is a prefix of the declared chain
// and returns its length. Any recorded step outside that prefix means the
// ledger and the declared chain diverged.
func (mm *MigrationManager) appliedPrefix(applied []Migration) (int, error) {
	appliedSet := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedSet[m.ID] = true
	}

	prefix := 0
	for _, step := range mm.steps {
		if !appliedSet[step.ID] {
			break
		}
		prefix++
	}

	prefixIDs := make(map[string]bool, prefix)
	for _, step := range mm.steps[:prefix] {
		prefixIDs[step.ID] = true
	}
	for _, m := range applied {
		if !prefixIDs[m.ID] {
			return 0, fmt.Errorf("%w: applied step %s does not continue the declared chain", ErrStepOrdering, m.ID)
		}
	}

	return prefix, nil
}

func (mm *MigrationManager) createLedgerTable(ctx context.Context) error {
	t := &schema.Table{
		Name: mm.ledgerTable,
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeString, Size: 255, PK: true},
			{Name: "name", Type: schema.TypeString, Size: 255},
			{Name: "applied_at", Type: schema.TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
		},
	}
	for _, stmt := range schema.CreateSQL(t, mm.db.Dialect().Name()) {
		if _, err := mm.db.ExecContext(ctx, stmt); err != nil {
			if ok, sqlErr := IsSqlError(err); ok && (sqlErr == ExistTableErr || sqlErr == ExistIndexErr) {
				continue
			}
			return err
		}
	}
	return nil
}

func (mm *MigrationManager) applyStep(ctx context.Context, step MigrationStep) error {
	conn, err := mm.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := mm.acquireLock(ctx, conn); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer mm.releaseLock(conn)

	// another instance may have applied this step while we waited on the lock
	applied, err := mm.stepApplied(ctx, conn, step.ID)
	if err != nil {
		return err
	}
	if applied {
		mm.logger.Debug("Migration already applied, skipping", "id", step.ID)
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				mm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := step.Up(ctx, tx); err != nil {
		return err
	}

	record := &Migration{
		ID:        step.ID,
		Name:      step.Name,
		AppliedAt: time.Now(),
	}
	if _, err := tx.NewInsert().Model(record).ModelTableExpr("?", bun.Ident(mm.ledgerTable)).Exec(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	mm.logger.Info("Migration applied", "id", step.ID, "name", step.Name)
	return nil
}

func (mm *MigrationManager) revertStep(ctx context.Context, step MigrationStep) error {
	conn, err := mm.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := mm.acquireLock(ctx, conn); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer mm.releaseLock(conn)

	applied, err := mm.stepApplied(ctx, conn, step.ID)
	if err != nil {
		return err
	}
	if !applied {
		mm.logger.Debug("Migration already reverted, skipping", "id", step.ID)
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				mm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := step.Down(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.NewDelete().
		Model((*Migration)(nil)).
		ModelTableExpr("?", bun.Ident(mm.ledgerTable)).
		Where("id = ?", step.ID).
		Exec(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	mm.logger.Info("Migration reverted", "id", step.ID, "name", step.Name)
	return nil
}

func (mm *MigrationManager) stepApplied(ctx context.Context, db bun.IDB, id string) (bool, error) {
	return db.NewSelect().
		ColumnExpr("1").
		TableExpr("? AS m", bun.Ident(mm.ledgerTable)).
		Where("m.id = ?", id).
		Exists(ctx)
}

func (mm *MigrationManager) acquireLock(ctx context.Context, conn bun.Conn) error {
	switch mm.db.Dialect().Name() {
	case dialect.PG:
		_, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(?)", advisoryLockKey)
		return err
	case dialect.MySQL:
		var got sql.NullInt64
		err := conn.QueryRowContext(ctx,
			"SELECT GET_LOCK(CONCAT(DATABASE(), ':', ?), ?)", mm.ledgerTable, migrationLockWait).Scan(&got)
		if err != nil {
			return err
		}
		if !got.Valid || got.Int64 != 1 {
			return fmt.Errorf("timed out waiting for migration lock")
		}
		return nil
	default:
		return nil
	}
}

func (mm *MigrationManager) releaseLock(conn bun.Conn) {
	switch mm.db.Dialect().Name() {
	case dialect.PG:
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(?)", advisoryLockKey)
	case dialect.MySQL:
		_, _ = conn.ExecContext(context.Background(),
			"SELECT RELEASE_LOCK(CONCAT(DATABASE(), ':', ?))", mm.ledgerTable)
	}
}
