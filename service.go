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

package ideahub

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/ideahub/database"
	"github.com/tomoncle/ideahub/repository"
	"github.com/tomoncle/ideahub/types"
)

// Service is the application-facing data access surface for one entity
// type, bound to the global database connection. The *WithTx variants run
// against a caller-owned transaction, the builders escape to raw Bun for
// queries the generic methods cannot express.
type Service[T any] interface {
	Get(ctx context.Context, id any) (*T, error)
	All(ctx context.Context) ([]*T, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)
	Query(ctx context.Context, expr string, args ...interface{}) ([]*T, error)
	Count(ctx context.Context) (int, error)
	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)

	Save(ctx context.Context, models ...*T) error
	// SaveOrUpdate upserts: rows colliding on conflictCols get assignCols
	// rewritten, empty conflictCols means the primary key.
	SaveOrUpdate(ctx context.Context, assignCols, conflictCols []string, models ...*T) error
	Update(ctx context.Context, model *T) error
	Delete(ctx context.Context, id any) error

	SaveWithTx(ctx context.Context, tx bun.IDB, models ...*T) error
	SaveOrUpdateWithTx(ctx context.Context, tx bun.IDB, assignCols, conflictCols []string, models ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, model *T) error
	DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error

	SelectBuilder() *bun.SelectQuery
	InsertBuilder() *bun.InsertQuery
	UpdateBuilder() *bun.UpdateQuery
	DeleteBuilder() *bun.DeleteQuery
}

// NewService returns the default Service implementation. The repository
// binds lazily, so services may be constructed before the database is up.
func NewService[T any]() Service[T] {
	return &entityService[T]{}
}

type entityService[T any] struct {
	store repository.Repository[T]
	once  sync.Once
}

func (s *entityService[T]) repo() repository.Repository[T] {
	s.once.Do(func() { s.store = repository.NewRepository[T](database.GetDB()) })
	return s.store
}

func (s *entityService[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.repo().Get(ctx, id)
}

func (s *entityService[T]) All(ctx context.Context) ([]*T, error) {
	return s.repo().All(ctx)
}

func (s *entityService[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.repo().Find(ctx, filter)
}

func (s *entityService[T]) Query(ctx context.Context, expr string, args ...interface{}) ([]*T, error) {
	return s.repo().FindWhere(ctx, expr, args...)
}

func (s *entityService[T]) Count(ctx context.Context) (int, error) {
	return s.repo().Count(ctx)
}

func (s *entityService[T]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo().Page(ctx, req)
}

func (s *entityService[T]) Save(ctx context.Context, models ...*T) error {
	return s.repo().Insert(ctx, models...)
}

func (s *entityService[T]) SaveOrUpdate(ctx context.Context, assignCols, conflictCols []string, models ...*T) error {
	return s.repo().Upsert(ctx, assignCols, conflictCols, models...)
}

func (s *entityService[T]) Update(ctx context.Context, model *T) error {
	return s.repo().Update(ctx, model)
}

func (s *entityService[T]) Delete(ctx context.Context, id any) error {
	return s.repo().Delete(ctx, id)
}

func (s *entityService[T]) SaveWithTx(ctx context.Context, tx bun.IDB, models ...*T) error {
	return s.repo().InsertTx(ctx, tx, models...)
}

func (s *entityService[T]) SaveOrUpdateWithTx(ctx context.Context, tx bun.IDB, assignCols, conflictCols []string, models ...*T) error {
	return s.repo().UpsertTx(ctx, tx, assignCols, conflictCols, models...)
}

func (s *entityService[T]) UpdateWithTx(ctx context.Context, tx bun.IDB, model *T) error {
	return s.repo().UpdateTx(ctx, tx, model)
}

func (s *entityService[T]) DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error {
	return s.repo().DeleteTx(ctx, tx, id)
}

func (s *entityService[T]) SelectBuilder() *bun.SelectQuery { return s.repo().NewSelect() }

func (s *entityService[T]) InsertBuilder() *bun.InsertQuery { return s.repo().NewInsert() }

func (s *entityService[T]) UpdateBuilder() *bun.UpdateQuery { return s.repo().NewUpdate() }

func (s *entityService[T]) DeleteBuilder() *bun.DeleteQuery { return s.repo().NewDelete() }
