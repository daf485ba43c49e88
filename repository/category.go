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

	"github.com/tomoncle/bookstore/models"
)

// CategoryRepository adds category specific writes to the generic repository.
type CategoryRepository struct {
	Repository[models.Category]
	session *Session
}

func NewCategoryRepository(session *Session) *CategoryRepository {
	return &CategoryRepository{
		Repository: NewRepository[models.Category](session),
		session:    session,
	}
}

// Update reloads the category by ID, overwrites its name and saves the
// session. Saving flushes every change pending in the session, not only this
// one. A category that no longer exists is left alone and nil is returned.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if category == nil {
		return ErrNilEntity
	}
	current, err := r.Get(ctx, category.ID)
	if err != nil || current == nil {
		return err
	}
	current.Name = category.Name
	if err = r.session.Stage(ChangeUpdate, current, "name"); err != nil {
		return err
	}
	_, err = r.session.SaveChanges(ctx)
	return err
}
