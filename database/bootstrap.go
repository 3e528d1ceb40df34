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
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomoncle/ideahub/models"
	"github.com/tomoncle/ideahub/types"
)

// SeedManager creates the initial superuser account. It never touches an
// existing account, reruns are no-ops.
type SeedManager struct {
	db     *bun.DB
	config *BootstrapConfig
	logger Logger
}

// NewSeedManager creates a seeder from the bootstrap configuration.
func NewSeedManager(db *bun.DB, config *BootstrapConfig, logger Logger) *SeedManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &SeedManager{
		db:     db,
		config: config,
		logger: logger,
	}
}

// SeedSuperuser inserts the configured superuser with a bcrypt password
// hash and an audit trail row, in one transaction. Missing configuration
// skips the seed. A concurrent duplicate insert surfaces as
// ErrSeedConflict, which callers treat as already seeded.
func (sm *SeedManager) SeedSuperuser(ctx context.Context) error {
	if sm.config == nil || sm.config.SuperuserEmail == "" || sm.config.SuperuserPassword == "" {
		sm.logger.Debug("Superuser seed not configured, skipping")
		return nil
	}
	email := sm.config.SuperuserEmail

	exists, err := sm.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to look up superuser: %w", err)
	}
	if exists {
		sm.logger.Info("Superuser already exists, leaving it untouched", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sm.config.SuperuserPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash superuser password: %w", err)
	}

	userID, err := uuid.NewV4()
	if err != nil {
		return err
	}
	auditID, err := uuid.NewV4()
	if err != nil {
		return err
	}

	user := &models.User{
		ID:             userID,
		Email:          email,
		IsActive:       true,
		IsSuperuser:    true,
		HashedPassword: string(hash),
	}
	audit := &models.AuditLog{
		ID:         auditID,
		Action:     "user.bootstrap",
		EntityType: "user",
		EntityID:   userID,
		NewValues:  types.JsonObject{"email": email, "is_superuser": true},
		UserID:     &userID,
		CreatedAt:  time.Now(),
	}

	err = sm.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(audit).Exec(ctx)
		return err
	})
	if err != nil {
		if ok, sqlErr := IsSqlError(err); ok && sqlErr == DuplicateKeyErr {
			return fmt.Errorf("%w: superuser %s", ErrSeedConflict, email)
		}
		return fmt.Errorf("failed to seed superuser: %w", err)
	}

	sm.logger.Info("Superuser created", "email", email)
	return nil
}
