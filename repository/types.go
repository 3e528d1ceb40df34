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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/ideahub/types"
)

// Reader loads entities of one type.
type Reader[T any] interface {
	// Get returns the entity with the given primary key.
	Get(ctx context.Context, id any) (*T, error)

	// All returns every entity of the type.
	All(ctx context.Context) ([]*T, error)

	// Find returns the entities matching the filter, all of them when the
	// filter is nil.
	Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// FindWhere is Find with an inline WHERE fragment.
	FindWhere(ctx context.Context, expr string, args ...interface{}) ([]*T, error)

	// Count returns the number of entities of the type.
	Count(ctx context.Context) (int, error)

	// Page returns one page of entities plus the total count.
	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)
}

// Writer mutates entities of one type.
type Writer[T any] interface {
	// Insert stores new entities.
	Insert(ctx context.Context, entities ...*T) error

	// Upsert inserts entities, updating assignCols on rows that collide
	// with conflictCols. With empty conflictCols the primary key is used.
	Upsert(ctx context.Context, assignCols, conflictCols []string, entities ...*T) error

	// Update rewrites an entity identified by its primary key.
	Update(ctx context.Context, entity *T) error

	// Delete removes the entity with the given primary key.
	Delete(ctx context.Context, id any) error
}

// TxWriter mirrors Writer inside a caller-owned transaction or connection.
type TxWriter[T any] interface {
	InsertTx(ctx context.Context, tx bun.IDB, entities ...*T) error
	UpsertTx(ctx context.Context, tx bun.IDB, assignCols, conflictCols []string, entities ...*T) error
	UpdateTx(ctx context.Context, tx bun.IDB, entity *T) error
	DeleteTx(ctx context.Context, tx bun.IDB, id any) error
}

// Repository is the full data access surface for one entity type, with the
// Bun builders exposed for queries the generic methods cannot express.
type Repository[T any] interface {
	Reader[T]
	Writer[T]
	TxWriter[T]

	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
