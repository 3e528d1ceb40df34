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

// Package models defines Bun row structs for the platform tables. The
// columns mirror the schema registry, which stays the single source of
// truth for the DDL.
package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/uptrace/bun"

	"github.com/tomoncle/ideahub/types"
)

// User is an account. The initial superuser is seeded from configuration.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email          string    `bun:"email,notnull" json:"email"`
	IsActive       bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	IsSuperuser    bool      `bun:"is_superuser,notnull,default:false" json:"is_superuser"`
	FullName       *string   `bun:"full_name" json:"full_name,omitempty"`
	HashedPassword string    `bun:"hashed_password,notnull" json:"-"`
}

// Team groups users around shared ideas.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description *string   `bun:"description" json:"description,omitempty"`
	IsPublic    bool      `bun:"is_public,notnull,default:true" json:"is_public"`
	OwnerID     uuid.UUID `bun:"owner_id,type:uuid,notnull" json:"owner_id"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Idea is the central entity of the platform.
type Idea struct {
	bun.BaseModel `bun:"table:ideas,alias:i"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description,notnull" json:"description"`
	Status      string     `bun:"status,notnull,default:'draft'" json:"status"`
	IsPublic    bool       `bun:"is_public,notnull,default:false" json:"is_public"`
	Tags        *string    `bun:"tags" json:"tags,omitempty"`
	CreatorID   uuid.UUID  `bun:"creator_id,type:uuid,notnull" json:"creator_id"`
	TeamID      *uuid.UUID `bun:"team_id,type:uuid" json:"team_id,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Comment is threaded feedback on an idea.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Content   string     `bun:"content,notnull" json:"content"`
	IsEdited  bool       `bun:"is_edited,notnull,default:false" json:"is_edited"`
	IdeaID    uuid.UUID  `bun:"idea_id,type:uuid,notnull" json:"idea_id"`
	AuthorID  uuid.UUID  `bun:"author_id,type:uuid,notnull" json:"author_id"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Invite asks a user into a team or an idea, identified by a unique token.
type Invite struct {
	bun.BaseModel `bun:"table:invites,alias:iv"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Email      string     `bun:"email,notnull" json:"email"`
	InviteType string     `bun:"invite_type,notnull" json:"invite_type"`
	Status     string     `bun:"status,notnull,default:'pending'" json:"status"`
	Message    *string    `bun:"message" json:"message,omitempty"`
	Token      string     `bun:"token,notnull" json:"token"`
	ExpiresAt  time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	InviterID  uuid.UUID  `bun:"inviter_id,type:uuid,notnull" json:"inviter_id"`
	TeamID     *uuid.UUID `bun:"team_id,type:uuid" json:"team_id,omitempty"`
	IdeaID     *uuid.UUID `bun:"idea_id,type:uuid" json:"idea_id,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Notification is an in-app message for a user.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID               uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	Title            string           `bun:"title,notnull" json:"title"`
	Message          string           `bun:"message,notnull" json:"message"`
	NotificationType string           `bun:"notification_type,notnull" json:"notification_type"`
	IsRead           bool             `bun:"is_read,notnull,default:false" json:"is_read"`
	ExtraData        types.JsonObject `bun:"extra_data" json:"extra_data,omitempty"`
	UserID           uuid.UUID        `bun:"user_id,type:uuid,notnull" json:"user_id"`
	CreatedAt        time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// AuditLog records who changed what. Rows are written by the application,
// never updated.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	Action     string           `bun:"action,notnull" json:"action"`
	EntityType string           `bun:"entity_type,notnull" json:"entity_type"`
	EntityID   uuid.UUID        `bun:"entity_id,type:uuid,notnull" json:"entity_id"`
	OldValues  types.JsonObject `bun:"old_values" json:"old_values,omitempty"`
	NewValues  types.JsonObject `bun:"new_values" json:"new_values,omitempty"`
	IPAddress  *string          `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent  *string          `bun:"user_agent" json:"user_agent,omitempty"`
	UserID     *uuid.UUID       `bun:"user_id,type:uuid" json:"user_id,omitempty"`
	CreatedAt  time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
