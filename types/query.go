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

package types

import "strings"

// QueryFilter describes a WHERE clause schema and its argument values.
// Schema uses bun placeholders, e.g. "name = ?".
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// And returns a filter matching rows that satisfy both f and other.
// A nil operand is treated as "no restriction".
func (f *QueryFilter) And(other *QueryFilter) *QueryFilter {
	switch {
	case f == nil:
		return other
	case other == nil:
		return f
	}
	args := make([]interface{}, 0, len(f.Args)+len(other.Args))
	args = append(args, f.Args...)
	args = append(args, other.Args...)
	return &QueryFilter{"(" + f.Schema + ") AND (" + other.Schema + ")", args}
}

// IsEmpty reports whether the filter restricts nothing.
func (f *QueryFilter) IsEmpty() bool {
	return f == nil || strings.TrimSpace(f.Schema) == ""
}

// Relation names a related collection or reference of the entity T that can be
// eagerly loaded alongside it. Values are declared once next to the model, so a
// misspelt relation is a compile error at the call site.
type Relation[T any] struct {
	name string
}

// NewRelation declares a relation of T by its bun field name.
func NewRelation[T any](name string) Relation[T] {
	return Relation[T]{name: strings.TrimSpace(name)}
}

// Name returns the bun relation name.
func (r Relation[T]) Name() string { return r.name }

// IsZero reports whether r was never declared.
func (r Relation[T]) IsZero() bool { return r.name == "" }

func (r Relation[T]) String() string { return r.name }
