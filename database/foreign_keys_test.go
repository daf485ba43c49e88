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

package database

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestForeignKeyGenerateSQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "books",
		Column:          "category_id",
		ReferenceTable:  "categories",
		ReferenceColumn: "id",
		OnDelete:        "restrict",
		OnUpdate:        "cascade",
	}
	assert.Equal(t, "fk_books_category_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE books ADD CONSTRAINT fk_books_category_id FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT ON UPDATE CASCADE",
		fk.GenerateSQL())

	fk.ConstraintName = "books_category"
	fk.OnUpdate = ""
	assert.Equal(t,
		"ALTER TABLE books ADD CONSTRAINT books_category FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT",
		fk.GenerateSQL())
}

func TestLoadForeignKeyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign_keys.yaml")
	content := `foreign_keys:
  - table: books
    column: category_id
    reference_table: categories
    reference_column: id
    on_delete: SET NULL
    constraint_name: fk_book_category
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	constraints, err := LoadForeignKeyConfig(path)
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	assert.Equal(t, "fk_book_category", constraints[0].GenerateConstraintName())
	assert.Equal(t, "SET NULL", constraints[0].OnDelete)

	_, err = LoadForeignKeyConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = LoadForeignKeyConfig("")
	assert.Error(t, err)
}

func TestConfigurableForeignKeyManagerFallsBack(t *testing.T) {
	fkm := NewConfigurableForeignKeyManager(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	constraints := fkm.ListAllConstraints()
	require.Len(t, constraints, 1)
	assert.Equal(t, "books", constraints[0].Table)
	assert.Len(t, fkm.GetConstraintsByTable("BOOKS"), 1)
	assert.Empty(t, fkm.GetConstraintsByTable("categories"))
	assert.Empty(t, fkm.ValidateConstraints())
}

func TestValidateConstraints(t *testing.T) {
	fkm := &ForeignKeyManager{constraints: []ForeignKeyConstraint{
		{Table: "books", Column: "category_id", ReferenceTable: "categories", ReferenceColumn: "id", OnDelete: "DROP"},
		{Table: "books", OnUpdate: "explode"},
	}}
	errs := fkm.ValidateConstraints()
	// first: bad delete policy; second: column, ref table, ref column, bad update policy
	assert.Len(t, errs, 5)
}

func TestAddAllForeignKeys(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, mysqldialect.New())
	defer db.Close()

	fkm := NewForeignKeyManager(nil)
	mock.ExpectExec(regexp.QuoteMeta(fkm.ListAllConstraints()[0].GenerateSQL())).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, fkm.AddAllForeignKeys(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAllForeignKeysSkipsSQLite(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	require.NoError(t, NewForeignKeyManager(nil).AddAllForeignKeys(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())

	err = NewForeignKeyManager(nil).RemoveForeignKey(context.Background(), db, "books", "fk_books_category_id")
	assert.Error(t, err)
}

func TestRemoveForeignKeyMySQL(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, mysqldialect.New())
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE books DROP FOREIGN KEY fk_books_category_id")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewForeignKeyManager(nil).RemoveForeignKey(context.Background(), db, "books", "fk_books_category_id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
