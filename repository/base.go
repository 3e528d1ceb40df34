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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/ideahub/types"
)

type bunRepository[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository over the given Bun database.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &bunRepository[T]{db: db}
}

func (r *bunRepository[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *bunRepository[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *bunRepository[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *bunRepository[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *bunRepository[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *bunRepository[T]) Get(ctx context.Context, id any) (*T, error) {
	entity := new(T)
	if err := r.db.NewSelect().Model(entity).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *bunRepository[T]) All(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *bunRepository[T]) Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Expr, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *bunRepository[T]) FindWhere(ctx context.Context, expr string, args ...interface{}) ([]*T, error) {
	return r.Find(ctx, types.NewQueryFilter(expr, args...))
}

func (r *bunRepository[T]) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *bunRepository[T]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error) {
	if req == nil {
		req = types.NewDefaultPageRequest(types.DefaultPage, types.DefaultPageSize)
	}
	page := types.NewPagination[T](req.Page(), req.PageSize())

	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if f := req.Filter(); f != nil {
		query = query.Where(f.Expr, f.Args...)
	}
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return page, err
	}
	err = query.
		Offset(req.Offset()).
		Limit(req.PageSize()).
		Order(req.Orders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	page.Total = total
	page.Items = entities
	return page, nil
}

func (r *bunRepository[T]) Insert(ctx context.Context, entities ...*T) error {
	return r.InsertTx(ctx, r.db, entities...)
}

func (r *bunRepository[T]) Upsert(ctx context.Context, assignCols, conflictCols []string, entities ...*T) error {
	return r.UpsertTx(ctx, r.db, assignCols, conflictCols, entities...)
}

func (r *bunRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.UpdateTx(ctx, r.db, entity)
}

func (r *bunRepository[T]) Delete(ctx context.Context, id any) error {
	return r.DeleteTx(ctx, r.db, id)
}

func (r *bunRepository[T]) InsertTx(ctx context.Context, tx bun.IDB, entities ...*T) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *bunRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, assignCols, conflictCols []string, entities ...*T) error {
	if len(entities) == 0 {
		return nil
	}
	if len(assignCols) == 0 {
		return fmt.Errorf("upsert needs at least one column to assign")
	}
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return upsertOnConflict(ctx, tx.NewInsert(), assignCols, conflictCols, entities)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return upsertOnDuplicateKey(ctx, tx.NewInsert(), assignCols, entities)
	default:
		return upsertSequential(ctx, tx, entities)
	}
}

func (r *bunRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, entity *T) error {
	_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *bunRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, id any) error {
	_, err := tx.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// upsertOnConflict is the PostgreSQL and SQLite path, ON CONFLICT DO UPDATE.
func upsertOnConflict[T any](ctx context.Context, query *bun.InsertQuery, assignCols, conflictCols []string, entities []*T) error {
	if len(conflictCols) == 0 {
		conflictCols = []string{"id"}
	}
	assigns := make([]string, 0, len(assignCols))
	for _, col := range assignCols {
		assigns = append(assigns, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(col), bun.Ident(col)))
	}
	_, err := query.
		Model(&entities).
		On("CONFLICT (" + strings.Join(conflictCols, ", ") + ") DO UPDATE").
		Set(strings.Join(assigns, ", ")).
		Exec(ctx)
	return err
}

// upsertOnDuplicateKey is the MySQL path, ON DUPLICATE KEY UPDATE. The
// conflict target is implicit, MySQL picks any unique key.
func upsertOnDuplicateKey[T any](ctx context.Context, query *bun.InsertQuery, assignCols []string, entities []*T) error {
	assigns := make([]string, 0, len(assignCols))
	for _, col := range assignCols {
		assigns = append(assigns, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(col), bun.Ident(col)))
	}
	_, err := query.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assigns, ", ")).
		Exec(ctx)
	return err
}

// upsertSequential inserts row by row, falling back to an update by primary
// key when the insert collides. Only used by dialects without native upsert.
func upsertSequential[T any](ctx context.Context, tx bun.IDB, entities []*T) error {
	for _, entity := range entities {
		if _, err := tx.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, uerr := tx.NewUpdate().Model(entity).WherePK().Exec(ctx); uerr != nil {
				return fmt.Errorf("upsert failed: insert: %v, update: %v", err, uerr)
			}
		}
	}
	return nil
}
