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

type Book struct {
	bun.BaseModel `bun:"table:books,alias:book"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Title      string    `bun:"title,notnull" json:"title" validate:"required,max=200"`
	Author     string    `bun:"author" json:"author" validate:"max=100"`
	ISBN       string    `bun:"isbn" json:"isbn" validate:"omitempty,isbn"`
	Price      float64   `bun:"price,notnull,default:0" json:"price" validate:"gte=0"`
	CategoryID int64     `bun:"category_id,notnull" json:"categoryId" validate:"required"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// BookCategory loads the category a book is filed under.
var BookCategory = types.NewRelation[Book]("Category")

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Book)(nil), 20))
}
