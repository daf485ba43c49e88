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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/bookstore/types"
	"github.com/uptrace/bun"
)

type baseRepositoryImpl[T any] struct {
	session *Session
}

// NewRepository returns a generic repository bound to session.
func NewRepository[T any](session *Session) Repository[T] {
	return &baseRepositoryImpl[T]{session: session}
}

func (r *baseRepositoryImpl[T]) newSelect(model interface{}, include []types.Relation[T]) (*bun.SelectQuery, error) {
	db, err := r.session.DB()
	if err != nil {
		return nil, err
	}
	query := db.NewSelect().Model(model)
	for _, rel := range include {
		if !rel.IsZero() {
			query = query.Relation(rel.Name())
		}
	}
	return query, nil
}

func applyFilter(query *bun.SelectQuery, filter *types.QueryFilter) *bun.SelectQuery {
	if filter.IsEmpty() {
		return query
	}
	return query.Where(filter.Schema, filter.Args...)
}

func (r *baseRepositoryImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	entity := new(T)
	query, err := r.newSelect(entity, nil)
	if err != nil {
		return nil, err
	}
	err = query.Where("?TablePKs = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, filter *types.QueryFilter, orderBy OrderFunc, include ...types.Relation[T]) ([]*T, error) {
	entities := make([]*T, 0)
	query, err := r.newSelect(&entities, include)
	if err != nil {
		return nil, err
	}
	query = applyFilter(query, filter)
	if orderBy != nil {
		query = orderBy(query)
	}
	if err = query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetFirstOrDefault(ctx context.Context, filter *types.QueryFilter, include ...types.Relation[T]) (*T, error) {
	entity := new(T)
	query, err := r.newSelect(entity, include)
	if err != nil {
		return nil, err
	}
	err = applyFilter(query, filter).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query, err := r.newSelect((*T)(nil), nil)
	if err != nil {
		return 0, err
	}
	return applyFilter(query, filter).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest, include ...types.Relation[T]) (*types.Pagination[T], error) {
	entities := make([]*T, 0)
	query, err := r.newSelect(&entities, include)
	if err != nil {
		return nil, err
	}
	query = applyFilter(query, pageRequest.GetFilter())
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Add(entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	return r.session.Stage(ChangeInsert, entity)
}

func (r *baseRepositoryImpl[T]) Remove(ctx context.Context, id any) error {
	entity, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		var zero T
		return fmt.Errorf("remove %T with id %v: %w", zero, id, ErrEntityNotFound)
	}
	return r.session.Stage(ChangeDelete, entity)
}

func (r *baseRepositoryImpl[T]) RemoveEntity(entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	return r.session.Stage(ChangeDelete, entity)
}

func (r *baseRepositoryImpl[T]) RemoveRange(entities ...*T) error {
	for _, entity := range entities {
		if entity == nil {
			return ErrNilEntity
		}
	}
	for _, entity := range entities {
		if err := r.session.Stage(ChangeDelete, entity); err != nil {
			return err
		}
	}
	return nil
}
