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

package storedproc

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomoncle/bookstore/database"
	"github.com/uptrace/bun"
)

// Conn yields the connection calls are issued on. *repository.Session
// implements it, so a Caller shares the session's connection and lifetime.
type Conn interface {
	DB() (bun.IDB, error)
}

// Caller invokes stored procedures. The bun.DB is only used for its dialect
// and scanner; statements always run on Conn.
type Caller struct {
	db     *bun.DB
	conn   Conn
	logger database.Logger
}

func NewCaller(db *bun.DB, conn Conn) *Caller {
	return &Caller{db: db, conn: conn, logger: database.GetLogger()}
}

// Execute calls a procedure for its side effects.
func (c *Caller) Execute(ctx context.Context, procedure string, params *Params) error {
	idb, stmt, err := c.prepare(modeExec, procedure, params)
	if err != nil {
		return err
	}
	if _, err = idb.ExecContext(ctx, stmt, params.Values()...); err != nil {
		return fmt.Errorf("execute %s: %w", procedure, err)
	}
	return nil
}

func (c *Caller) prepare(mode callMode, procedure string, params *Params) (bun.IDB, string, error) {
	idb, err := c.conn.DB()
	if err != nil {
		return nil, "", err
	}
	stmt, err := buildCall(idb.Dialect().Name(), mode, procedure, params)
	if err != nil {
		return nil, "", err
	}
	c.logger.Debug("calling procedure", "procedure", procedure, "params", params.Len())
	return idb, stmt, nil
}

func (c *Caller) query(ctx context.Context, procedure string, params *Params) (*sql.Rows, error) {
	idb, stmt, err := c.prepare(modeQuery, procedure, params)
	if err != nil {
		return nil, err
	}
	rows, err := idb.QueryContext(ctx, stmt, params.Values()...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", procedure, err)
	}
	return rows, nil
}

// Results holds two result sets in the order the procedure emitted them.
type Results[T1, T2 any] struct {
	First  []T1
	Second []T2
}

// Single returns the only value the procedure produced, converted to T.
func Single[T any](ctx context.Context, c *Caller, procedure string, params *Params) (T, error) {
	var zero T
	rows, err := c.query(ctx, procedure, params)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return zero, err
	}
	if len(columns) != 1 || !rows.Next() {
		if err = rows.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s: %w", procedure, ErrNotSingleValue)
	}
	var value T
	if err = c.db.ScanRow(ctx, rows, &value); err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, fmt.Errorf("%s: %w", procedure, ErrNotSingleValue)
	}
	if err = rows.Err(); err != nil {
		return zero, err
	}
	return value, nil
}

// OneRecord maps the first row of the first result set onto T, or returns nil
// when the procedure produced no rows.
func OneRecord[T any](ctx context.Context, c *Caller, procedure string, params *Params) (*T, error) {
	rows, err := c.query(ctx, procedure, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	record := new(T)
	if err = c.db.ScanRow(ctx, rows, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List maps every row of the first result set onto T. The slice is never nil.
func List[T any](ctx context.Context, c *Caller, procedure string, params *Params) ([]T, error) {
	rows, err := c.query(ctx, procedure, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAll[T](ctx, c.db, rows)
}

// List2 maps the first two result sets onto T1 and T2.
func List2[T1, T2 any](ctx context.Context, c *Caller, procedure string, params *Params) (*Results[T1, T2], error) {
	rows, err := c.query(ctx, procedure, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	first, err := scanAll[T1](ctx, c.db, rows)
	if err != nil {
		return nil, err
	}
	if !rows.NextResultSet() {
		if err = rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", procedure, ErrMissingResultSet)
	}
	second, err := scanAll[T2](ctx, c.db, rows)
	if err != nil {
		return nil, err
	}
	return &Results[T1, T2]{First: first, Second: second}, nil
}

func scanAll[T any](ctx context.Context, db *bun.DB, rows *sql.Rows) ([]T, error) {
	items := make([]T, 0)
	for rows.Next() {
		var item T
		if err := db.ScanRow(ctx, rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
