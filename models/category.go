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

package models

import (
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/types"
	"github.com/uptrace/bun"
)

// Category groups books for display. Name is not unique.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:category"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	Name         string  `bun:"name,notnull" json:"name" validate:"required,max=50"`
	DisplayOrder int     `bun:"display_order,notnull,default:0" json:"displayOrder" validate:"gte=0"`
	Books        []*Book `bun:"rel:has-many,join:id=category_id" json:"books,omitempty"`
}

// CategoryBooks loads the books filed under a category.
var CategoryBooks = types.NewRelation[Category]("Books")

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Category)(nil), 10))
}
