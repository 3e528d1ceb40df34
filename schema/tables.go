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
	"fmt"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry describing the platform schema. Tables are
// declared parents-first, so iteration order is a valid creation order.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, t := range platformTables() {
			if err := defaultRegistry.Register(t); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

func id() Column {
	return Column{Name: "id", Type: TypeUUID, PK: true}
}

func uuidCol(name string) Column {
	return Column{Name: name, Type: TypeUUID}
}

func uuidNull(name string) Column {
	return Column{Name: name, Type: TypeUUID, Nullable: true}
}

func strCol(name string, size int) Column {
	return Column{Name: name, Type: TypeString, Size: size}
}

func strNull(name string, size int) Column {
	return Column{Name: name, Type: TypeString, Size: size, Nullable: true}
}

func strDefault(name string, size int, def string) Column {
	return Column{Name: name, Type: TypeString, Size: size, Default: fmt.Sprintf("'%s'", def)}
}

func textCol(name string) Column {
	return Column{Name: name, Type: TypeText}
}

func textNull(name string) Column {
	return Column{Name: name, Type: TypeText, Nullable: true}
}

func boolCol(name string, def bool) Column {
	return Column{Name: name, Type: TypeBool, Default: fmt.Sprintf("%t", def)}
}

func intCol(name string, def int) Column {
	return Column{Name: name, Type: TypeInt, Default: fmt.Sprintf("%d", def)}
}

func intNull(name string) Column {
	return Column{Name: name, Type: TypeInt, Nullable: true}
}

func floatCol(name string, def float64) Column {
	return Column{Name: name, Type: TypeFloat, Default: fmt.Sprintf("%g", def)}
}

func floatNull(name string) Column {
	return Column{Name: name, Type: TypeFloat, Nullable: true}
}

func tsCol(name string) Column {
	return Column{Name: name, Type: TypeTimestamp}
}

func createdAt() Column {
	return Column{Name: "created_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"}
}

func updatedAt() Column {
	return Column{Name: "updated_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"}
}

func fk(column, refTable string, onDelete Action) ForeignKey {
	return ForeignKey{Column: column, RefTable: refTable, RefColumn: "id", OnDelete: onDelete}
}

func platformTables() []*Table {
	return []*Table{
		{
			Name: "users",
			Columns: []Column{
				id(),
				strCol("email", 255),
				boolCol("is_active", true),
				boolCol("is_superuser", false),
				strNull("full_name", 255),
				textCol("hashed_password"),
			},
			Indexes: []Index{{Columns: []string{"email"}, Unique: true}},
		},
		{
			Name: "user_profiles",
			Columns: []Column{
				id(),
				strNull("bio", 1000),
				strNull("location", 255),
				strNull("website", 255),
				strNull("linkedin_url", 255),
				strNull("twitter_url", 255),
				strNull("github_url", 255),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "user_resumes",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				boolCol("is_public", false),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "repos",
			Columns: []Column{
				id(),
				strCol("name", 255),
				strNull("description", 1000),
				strCol("url", 500),
				boolCol("is_private", false),
				strNull("language", 100),
				intCol("stars", 0),
				intCol("forks", 0),
				uuidCol("owner_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("owner_id", "users", Cascade)},
		},
		{
			Name: "items",
			Columns: []Column{
				id(),
				strCol("title", 255),
				strNull("description", 255),
				uuidCol("owner_id"),
			},
			ForeignKeys: []ForeignKey{fk("owner_id", "users", Cascade)},
		},
		{
			Name: "teams",
			Columns: []Column{
				id(),
				strCol("name", 255),
				strNull("description", 1000),
				boolCol("is_public", true),
				uuidCol("owner_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("owner_id", "users", Cascade)},
		},
		{
			Name: "team_members",
			Columns: []Column{
				{Name: "team_id", Type: TypeUUID, PK: true},
				{Name: "user_id", Type: TypeUUID, PK: true},
			},
			ForeignKeys: []ForeignKey{
				fk("team_id", "teams", Cascade),
				fk("user_id", "users", Cascade),
			},
		},
		{
			Name: "ideas",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("description"),
				strDefault("status", 50, "draft"),
				boolCol("is_public", false),
				strNull("tags", 500),
				uuidCol("creator_id"),
				uuidNull("team_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("creator_id", "users", Cascade),
				fk("team_id", "teams", SetNull),
			},
		},
		{
			Name: "shortlists",
			Columns: []Column{
				id(),
				strCol("name", 255),
				strNull("description", 1000),
				boolCol("is_public", false),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "shortlist_ideas",
			Columns: []Column{
				{Name: "shortlist_id", Type: TypeUUID, PK: true},
				{Name: "idea_id", Type: TypeUUID, PK: true},
			},
			ForeignKeys: []ForeignKey{
				fk("shortlist_id", "shortlists", Cascade),
				fk("idea_id", "ideas", Cascade),
			},
		},
		{
			Name: "deep_dive_versions",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				intCol("version", 1),
				strDefault("status", 50, "draft"),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "case_studies",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				strNull("company_name", 255),
				strNull("industry", 100),
				strNull("funding_stage", 100),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "market_snapshots",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				strNull("market_size", 255),
				strNull("growth_rate", 100),
				strNull("key_players", 1000),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "lens_insights",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				strCol("lens_type", 100),
				textNull("insights"),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "vc_thesis_comparisons",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				strNull("vc_firm", 255),
				floatNull("thesis_alignment_score"),
				textNull("notes"),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "investor_decks",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("content"),
				strCol("deck_type", 100),
				intCol("version", 1),
				boolCol("is_finalized", false),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "idea_collaborators",
			Columns: []Column{
				id(),
				strCol("role", 100),
				strNull("permissions", 500),
				uuidCol("idea_id"),
				uuidCol("user_id"),
				uuidCol("invited_by"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("user_id", "users", Cascade),
				fk("invited_by", "users", Cascade),
			},
		},
		{
			Name: "idea_change_proposals",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("description"),
				textCol("proposed_changes"),
				strDefault("status", 50, "pending"),
				textNull("reason"),
				uuidCol("idea_id"),
				uuidCol("proposer_id"),
				uuidNull("reviewer_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("proposer_id", "users", Cascade),
				fk("reviewer_id", "users", SetNull),
			},
		},
		{
			Name: "comments",
			Columns: []Column{
				id(),
				textCol("content"),
				boolCol("is_edited", false),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				uuidNull("parent_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
				fk("parent_id", "comments", Cascade),
			},
		},
		{
			Name: "invites",
			Columns: []Column{
				id(),
				strCol("email", 255),
				strCol("invite_type", 50),
				strDefault("status", 50, "pending"),
				strNull("message", 1000),
				strCol("token", 255),
				tsCol("expires_at"),
				uuidCol("inviter_id"),
				uuidNull("team_id"),
				uuidNull("idea_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("inviter_id", "users", Cascade),
				fk("team_id", "teams", Cascade),
				fk("idea_id", "ideas", Cascade),
			},
			Indexes: []Index{{Columns: []string{"token"}, Unique: true}},
		},
		{
			Name: "idea_version_qnas",
			Columns: []Column{
				id(),
				textCol("question"),
				textNull("answer"),
				strCol("question_type", 100),
				intCol("priority", 1),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "audit_logs",
			Columns: []Column{
				id(),
				strCol("action", 255),
				strCol("entity_type", 100),
				uuidCol("entity_id"),
				textNull("old_values"),
				textNull("new_values"),
				strNull("ip_address", 45),
				strNull("user_agent", 500),
				uuidNull("user_id"),
				createdAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", SetNull)},
		},
		{
			Name: "profile_qnas",
			Columns: []Column{
				id(),
				textCol("question"),
				textNull("answer"),
				strCol("category", 100),
				boolCol("is_public", true),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "notifications",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("message"),
				strCol("notification_type", 100),
				boolCol("is_read", false),
				textNull("extra_data"),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "export_records",
			Columns: []Column{
				id(),
				strCol("export_type", 100),
				strCol("entity_type", 100),
				uuidCol("entity_id"),
				strCol("file_name", 255),
				intNull("file_size"),
				strDefault("status", 50, "processing"),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "iterations",
			Columns: []Column{
				id(),
				strCol("title", 255),
				textCol("description"),
				intCol("version", 1),
				strDefault("status", 50, "draft"),
				textNull("goals"),
				textNull("outcomes"),
				uuidCol("idea_id"),
				uuidCol("author_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("author_id", "users", Cascade),
			},
		},
		{
			Name: "suggestions",
			Columns: []Column{
				id(),
				strCol("entity_type", 100),
				uuidCol("entity_id"),
				strCol("suggestion_type", 100),
				floatCol("score", 0),
				textNull("reason"),
				textNull("extra_data"),
				uuidCol("user_id"),
				createdAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", Cascade)},
		},
		{
			Name: "iterating_records",
			Columns: []Column{
				id(),
				strCol("current_stage", 100),
				floatCol("progress_percentage", 0),
				textNull("notes"),
				textNull("next_steps"),
				textNull("blockers"),
				uuidCol("idea_id"),
				uuidCol("user_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{
				fk("idea_id", "ideas", Cascade),
				fk("user_id", "users", Cascade),
			},
		},
		{
			Name: "llm_input_logs",
			Columns: []Column{
				id(),
				textCol("input_text"),
				strCol("input_type", 100),
				strNull("model_name", 100),
				textNull("parameters"),
				textNull("context"),
				strNull("session_id", 255),
				uuidNull("user_id"),
				createdAt(),
			},
			ForeignKeys: []ForeignKey{fk("user_id", "users", SetNull)},
		},
		{
			Name: "llm_processing_logs",
			Columns: []Column{
				id(),
				textNull("output_text"),
				strDefault("status", 50, "processing"),
				textNull("error_message"),
				intNull("processing_time_ms"),
				intNull("tokens_used"),
				floatNull("cost"),
				uuidCol("input_log_id"),
				createdAt(),
				updatedAt(),
			},
			ForeignKeys: []ForeignKey{fk("input_log_id", "llm_input_logs", Cascade)},
		},
	}
}
