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

// platformSteps declares the migration chain for the platform tables.
// Steps group tables so that foreign key targets always live in the same
// or an earlier step. The DDL comes from the schema registry, so both
// schema strategies produce identical tables.
func platformSteps() []MigrationStep {
	return []MigrationStep{
		{
			ID:   "0001_create_identity_tables",
			Name: "create identity tables",
			Up:   createTablesFunc("users", "user_profiles", "user_resumes"),
			Down: dropTablesFunc("users", "user_profiles", "user_resumes"),
		},
		{
			ID:     "0002_create_workspace_tables",
			Parent: "0001_create_identity_tables",
			Name:   "create workspace tables",
			Up:     createTablesFunc("repos", "items", "teams", "team_members"),
			Down:   dropTablesFunc("repos", "items", "teams", "team_members"),
		},
		{
			ID:     "0003_create_idea_tables",
			Parent: "0002_create_workspace_tables",
			Name:   "create idea tables",
			Up:     createTablesFunc("ideas", "shortlists", "shortlist_ideas"),
			Down:   dropTablesFunc("ideas", "shortlists", "shortlist_ideas"),
		},
		{
			ID:     "0004_create_analysis_tables",
			Parent: "0003_create_idea_tables",
			Name:   "create analysis tables",
			Up: createTablesFunc("deep_dive_versions", "case_studies", "market_snapshots",
				"lens_insights", "vc_thesis_comparisons", "investor_decks", "idea_version_qnas"),
			Down: dropTablesFunc("deep_dive_versions", "case_studies", "market_snapshots",
				"lens_insights", "vc_thesis_comparisons", "investor_decks", "idea_version_qnas"),
		},
		{
			ID:     "0005_create_collaboration_tables",
			Parent: "0004_create_analysis_tables",
			Name:   "create collaboration tables",
			Up:     createTablesFunc("idea_collaborators", "idea_change_proposals", "comments", "invites"),
			Down:   dropTablesFunc("idea_collaborators", "idea_change_proposals", "comments", "invites"),
		},
		{
			ID:     "0006_create_engagement_tables",
			Parent: "0005_create_collaboration_tables",
			Name:   "create engagement tables",
			Up:     createTablesFunc("profile_qnas", "notifications", "suggestions", "iterations", "iterating_records"),
			Down:   dropTablesFunc("profile_qnas", "notifications", "suggestions", "iterations", "iterating_records"),
		},
		{
			ID:     "0007_create_operations_tables",
			Parent: "0006_create_engagement_tables",
			Name:   "create operations tables",
			Up:     createTablesFunc("audit_logs", "export_records", "llm_input_logs", "llm_processing_logs"),
			Down:   dropTablesFunc("audit_logs", "export_records", "llm_input_logs", "llm_processing_logs"),
		},
	}
}

// createTablesFunc builds an Up function creating the named registry
// tables in the given order.
func createTablesFunc(names ...string) MigrationFunc {
	return func(ctx context.Context, db bun.IDB) error {
		registry := schema.Default()
		for _, name := range names {
			t, ok := registry.Lookup(name)
			if !ok {
				return fmt.Errorf("table %s is not registered", name)
			}
			for _, stmt := range schema.CreateSQL(t, db.Dialect().Name()) {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					if ok, sqlErr := IsSqlError(err); ok && (sqlErr == ExistTableErr || sqlErr == ExistIndexErr) {
						continue
					}
					return fmt.Errorf("failed to create table %s: %w", name, err)
				}
			}
		}
		return nil
	}
}

// dropTablesFunc builds a Down function dropping the named tables in
// reverse order, children before parents.
func dropTablesFunc(names ...string) MigrationFunc {
	return func(ctx context.Context, db bun.IDB) error {
		for i := len(names) - 1; i >= 0; i-- {
			stmt := schema.DropTableSQL(names[i], db.Dialect().Name())
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", names[i], err)
			}
		}
		return nil
	}
}
