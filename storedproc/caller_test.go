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
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/bookstore/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

type bookSummary struct {
	ID    int64  `bun:"id"`
	Title string `bun:"title"`
}

type authorSummary struct {
	Author string `bun:"author"`
	Books  int    `bun:"books"`
}

func newMockCaller(t *testing.T, d schema.Dialect) (*Caller, *repository.Session, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, d)
	t.Cleanup(func() { _ = db.Close() })
	session := repository.NewSession(db)
	return NewCaller(db, session), session, mock
}

func TestBuildCall(t *testing.T) {
	two := NewParams().Add("category_id", 1).Add("limit", 10)

	tests := []struct {
		name      string
		dialect   dialect.Name
		mode      callMode
		procedure string
		params    *Params
		want      string
		wantErr   error
	}{
		{"mysql positional", dialect.MySQL, modeQuery, "sp_books", two, "CALL sp_books(?, ?)", nil},
		{"mysql no params", dialect.MySQL, modeQuery, "sp_books", nil, "CALL sp_books()", nil},
		{"mysql exec", dialect.MySQL, modeExec, "shop.sp_archive", two, "CALL shop.sp_archive(?, ?)", nil},
		{"pg query named", dialect.PG, modeQuery, "sp_books", two, "SELECT * FROM sp_books(category_id => ?, limit => ?)", nil},
		{"pg exec named", dialect.PG, modeExec, "sp_archive", NewParams().Add("before", "2020"), "CALL sp_archive(before => ?)", nil},
		{"sqlite", dialect.SQLite, modeQuery, "sp_books", nil, "", ErrProceduresUnsupported},
		{"injection", dialect.MySQL, modeQuery, "sp_books(); DROP TABLE books", nil, "", ErrInvalidProcedureName},
		{"empty name", dialect.MySQL, modeQuery, " ", nil, "", ErrInvalidProcedureName},
		{"bad param name", dialect.PG, modeQuery, "sp_books", NewParams().Add("a b", 1), "", ErrInvalidParamName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildCall(tt.dialect, tt.mode, tt.procedure, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsKeepInsertionOrder(t *testing.T) {
	p := NewParams().Add("b", 2).Add("a", 1)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []interface{}{2, 1}, p.Values())
	assert.Equal(t, "b", p.Items()[0].Name)

	var empty *Params
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Values())
}

func TestSingle(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_count_books(3)")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(42)).
		RowsWillBeClosed()

	n, err := Single[int64](ctx, c, "sp_count_books", NewParams().Add("category_id", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSingleRejectsOtherShapes(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
	}{
		{"no rows", sqlmock.NewRows([]string{"total"})},
		{"two rows", sqlmock.NewRows([]string{"total"}).AddRow(1).AddRow(2)},
		{"two columns", sqlmock.NewRows([]string{"a", "b"}).AddRow(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, mock := newMockCaller(t, mysqldialect.New())
			mock.ExpectQuery("CALL sp_total").WillReturnRows(tt.rows).RowsWillBeClosed()

			_, err := Single[int64](context.Background(), c, "sp_total", nil)
			assert.ErrorIs(t, err, ErrNotSingleValue)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOneRecord(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_book('Dune')")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Dune").AddRow(2, "Dune Messiah")).
		RowsWillBeClosed()
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_book('Nothing')")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"})).
		RowsWillBeClosed()

	book, err := OneRecord[bookSummary](ctx, c, "sp_book", NewParams().Add("title", "Dune"))
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, bookSummary{ID: 1, Title: "Dune"}, *book)

	missing, err := OneRecord[bookSummary](ctx, c, "sp_book", NewParams().Add("title", "Nothing"))
	require.NoError(t, err)
	assert.Nil(t, missing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())
	ctx := context.Background()

	mock.ExpectQuery("CALL sp_books").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Dune").AddRow(2, "Solaris")).
		RowsWillBeClosed()
	mock.ExpectQuery("CALL sp_books").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"})).
		RowsWillBeClosed()

	books, err := List[bookSummary](ctx, c, "sp_books", nil)
	require.NoError(t, err)
	assert.Equal(t, []bookSummary{{1, "Dune"}, {2, "Solaris"}}, books)

	empty, err := List[bookSummary](ctx, c, "sp_books", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList2ReadsBothResultSets(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())

	books := sqlmock.NewRows([]string{"id", "title"})
	for i := 1; i <= 3; i++ {
		books.AddRow(i, "book")
	}
	authors := sqlmock.NewRows([]string{"author", "books"})
	for i := 1; i <= 5; i++ {
		authors.AddRow("author", i)
	}
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_dashboard(7)")).
		WillReturnRows(books, authors).
		RowsWillBeClosed()

	res, err := List2[bookSummary, authorSummary](context.Background(), c, "sp_dashboard", NewParams().Add("category_id", 7))
	require.NoError(t, err)
	assert.Len(t, res.First, 3)
	assert.Len(t, res.Second, 5)
	assert.Equal(t, 5, res.Second[4].Books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList2MissingSecondResultSet(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())

	mock.ExpectQuery("CALL sp_dashboard").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Dune")).
		RowsWillBeClosed()

	_, err := List2[bookSummary, authorSummary](context.Background(), c, "sp_dashboard", nil)
	assert.ErrorIs(t, err, ErrMissingResultSet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())
	boom := errors.New("procedure does not exist")

	mock.ExpectExec(regexp.QuoteMeta("CALL sp_archive('2020-01-01')")).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("CALL sp_missing").WillReturnError(boom)

	require.NoError(t, c.Execute(context.Background(), "sp_archive", NewParams().Add("before", "2020-01-01")))
	assert.ErrorIs(t, c.Execute(context.Background(), "sp_missing", nil), boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorPropagates(t *testing.T) {
	c, _, mock := newMockCaller(t, mysqldialect.New())
	boom := errors.New("lost connection")

	mock.ExpectQuery("CALL sp_books").WillReturnError(boom)

	_, err := List[bookSummary](context.Background(), c, "sp_books", nil)
	assert.ErrorIs(t, err, boom)
}

func TestSQLiteIsUnsupported(t *testing.T) {
	c, _, mock := newMockCaller(t, sqlitedialect.New())

	_, err := List[bookSummary](context.Background(), c, "sp_books", nil)
	assert.ErrorIs(t, err, ErrProceduresUnsupported)
	assert.ErrorIs(t, c.Execute(context.Background(), "sp_books", nil), ErrProceduresUnsupported)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedSession(t *testing.T) {
	c, session, mock := newMockCaller(t, mysqldialect.New())
	session.Close()

	_, err := Single[int64](context.Background(), c, "sp_total", nil)
	assert.ErrorIs(t, err, repository.ErrSessionClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}
