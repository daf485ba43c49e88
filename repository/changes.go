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
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/bookstore/types"
	"github.com/uptrace/bun"
)

// ChangeKind is the kind of write a staged Change performs.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota + 1
	ChangeUpdate
	ChangeDelete
)

var _ types.BaseEnum = ChangeInsert

// ParseChangeKind maps "insert", "update" or "delete" to its ChangeKind.
func ParseChangeKind(name string) (ChangeKind, error) {
	if k, ok := types.EnumByName(name, ChangeInsert, ChangeUpdate, ChangeDelete); ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown change kind %q", name)
}

func (k ChangeKind) IsValid() bool {
	return k >= ChangeInsert && k <= ChangeDelete
}

func (k ChangeKind) Number() int {
	if !k.IsValid() {
		return types.IllegalValue
	}
	return int(k)
}

func (k ChangeKind) Name() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	case ChangeDelete:
		return "delete"
	}
	return types.IllegalName
}

func (k ChangeKind) String() string { return k.Name() }

func (k ChangeKind) Desc() string {
	switch k {
	case ChangeInsert:
		return "add a new row"
	case ChangeUpdate:
		return "overwrite columns of an existing row"
	case ChangeDelete:
		return "remove an existing row"
	}
	return types.IllegalDesc
}

// Change is one pending write. Model is a bun struct pointer; Columns limits an
// update to the named columns, all columns when empty.
type Change struct {
	Kind    ChangeKind
	Model   interface{}
	Columns []string
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, modelName(c.Model))
}

func (c Change) apply(ctx context.Context, db bun.IDB) error {
	switch c.Kind {
	case ChangeInsert:
		_, err := db.NewInsert().Model(c.Model).Exec(ctx)
		return err
	case ChangeUpdate:
		q := db.NewUpdate().Model(c.Model).WherePK()
		if len(c.Columns) > 0 {
			q = q.Column(c.Columns...)
		}
		res, err := q.Exec(ctx)
		return checkAffected(res, err)
	case ChangeDelete:
		res, err := db.NewDelete().Model(c.Model).WherePK().Exec(ctx)
		return checkAffected(res, err)
	}
	return fmt.Errorf("unknown change kind %d", c.Kind)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func checkAffected(res rowsAffecter, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleEntity
	}
	return nil
}

// ChangeSet records pending writes in staging order. It is not safe for
// concurrent use.
type ChangeSet struct {
	changes []Change
}

func (s *ChangeSet) Stage(kind ChangeKind, model interface{}, columns ...string) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown change kind %d", kind)
	}
	if isNil(model) {
		return ErrNilEntity
	}
	s.changes = append(s.changes, Change{Kind: kind, Model: model, Columns: columns})
	return nil
}

func (s *ChangeSet) Len() int { return len(s.changes) }

// Pending returns a copy of the staged changes.
func (s *ChangeSet) Pending() []Change {
	out := make([]Change, len(s.changes))
	copy(out, s.changes)
	return out
}

func (s *ChangeSet) Clear() { s.changes = nil }

// Validate checks struct tags of every staged insert and update.
func (s *ChangeSet) Validate(v *validator.Validate) error {
	for i, c := range s.changes {
		if c.Kind == ChangeDelete {
			continue
		}
		if err := v.Struct(c.Model); err != nil {
			return fmt.Errorf("change %d (%s): %w", i, c, err)
		}
	}
	return nil
}

// Apply runs every staged change against db in staging order and stops at the
// first failure.
func (s *ChangeSet) Apply(ctx context.Context, db bun.IDB) error {
	for i, c := range s.changes {
		if err := c.apply(ctx, db); err != nil {
			return fmt.Errorf("change %d (%s): %w", i, c, err)
		}
	}
	return nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func modelName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
