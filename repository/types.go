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
	"strings"

	"github.com/tomoncle/bookstore/types"
	"github.com/uptrace/bun"
)

// OrderFunc applies an ordering to a select query.
type OrderFunc func(q *bun.SelectQuery) *bun.SelectQuery

// OrderBy returns an OrderFunc for expressions like "name ASC".
func OrderBy(orders ...string) OrderFunc {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, o := range orders {
			if o = strings.TrimSpace(o); o != "" {
				q = q.OrderExpr(o)
			}
		}
		return q
	}
}

// QueryRepository reads committed rows of T through the session connection.
type QueryRepository[T any] interface {
	// Get returns the entity with the given primary key, or nil when none exists.
	Get(ctx context.Context, id any) (*T, error)

	// GetAll returns every entity matching filter, with the include relations
	// loaded and orderBy applied. A nil filter or orderBy means none.
	GetAll(ctx context.Context, filter *types.QueryFilter, orderBy OrderFunc, include ...types.Relation[T]) ([]*T, error)

	// GetFirstOrDefault returns the first entity matching filter, or nil.
	GetFirstOrDefault(ctx context.Context, filter *types.QueryFilter, include ...types.Relation[T]) (*T, error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest, include ...types.Relation[T]) (*types.Pagination[T], error)
}

// StagingRepository stages writes in the session; nothing is persisted until
// the session saves its changes.
type StagingRepository[T any] interface {
	Add(entity *T) error

	// Remove looks the entity up by id and stages its removal. It returns
	// ErrEntityNotFound when no row has that id.
	Remove(ctx context.Context, id any) error

	RemoveEntity(entity *T) error

	RemoveRange(entities ...*T) error
}

// Repository is the generic repository every entity type gets.
type Repository[T any] interface {
	QueryRepository[T]
	PageQueryRepository[T]
	StagingRepository[T]
}
