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
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func writeSQLFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSplitSQLStatements(t *testing.T) {
	content := `-- seed categories
INSERT INTO categories (name, display_order)
VALUES ('Fiction', 1);

-- another
INSERT INTO categories (name) VALUES ('Poetry');
UPDATE categories SET display_order = 2 WHERE name = 'Poetry'`

	got := splitSQLStatements(content)
	assert.Equal(t, []string{
		"INSERT INTO categories (name, display_order) VALUES ('Fiction', 1);",
		"INSERT INTO categories (name) VALUES ('Poetry');",
		"UPDATE categories SET display_order = 2 WHERE name = 'Poetry'",
	}, got)

	assert.Empty(t, splitSQLStatements("-- nothing here\n\n"))
}

func TestParseFileOrder(t *testing.T) {
	assert.Equal(t, 10, parseFileOrder("010_categories.sql"))
	assert.Equal(t, 2, parseFileOrder("2_books.sql"))
	assert.Equal(t, 999, parseFileOrder("books.sql"))
	assert.Equal(t, 999, parseFileOrder("v1-books.sql"))
}

func TestGetSQLFilesOrdering(t *testing.T) {
	root := t.TempDir()
	common := filepath.Join(root, "common")
	dev := filepath.Join(root, "environments", "dev")
	writeSQLFile(t, common, "020_books.sql", "SELECT 1;")
	writeSQLFile(t, common, "010_categories.sql", "SELECT 1;")
	writeSQLFile(t, common, "readme.md", "ignored")
	writeSQLFile(t, dev, "001_demo.sql", "SELECT 1;")
	writeSQLFile(t, dev, "extra.SQL", "SELECT 1;")

	m := NewSQLInitManager(nil, "dev")
	m.SetSQLRootPath(root)
	files, err := m.GetSQLFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Environment+"/"+f.Name)
	}
	assert.Equal(t, []string{
		"common/010_categories.sql",
		"common/020_books.sql",
		"dev/001_demo.sql",
		"dev/extra.SQL",
	}, names)

	m = NewSQLInitManager(nil, "prod")
	m.SetSQLRootPath(filepath.Join(root, "missing"))
	files, err = m.GetSQLFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRenderTemplate(t *testing.T) {
	t.Setenv("BOOKSTORE_SEED_CATEGORY", "Mystery")
	m := NewSQLInitManager(nil, "dev")
	out, err := m.renderTemplate("INSERT INTO categories (name) VALUES ('{{.BOOKSTORE_SEED_CATEGORY}}'); -- {{.ENVIRONMENT}} {{.UNSET_VAR}}")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO categories (name) VALUES ('Mystery'); -- dev ", out)

	_, err = m.renderTemplate("{{.broken")
	assert.Error(t, err)
}

func TestExecuteInitialization(t *testing.T) {
	root := t.TempDir()
	writeSQLFile(t, filepath.Join(root, "common"), "010_categories.sql",
		"INSERT INTO categories (name) VALUES ('Fiction');\nINSERT INTO categories (name) VALUES ('Poetry');\n")

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories (name) VALUES ('Fiction');")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories (name) VALUES ('Poetry');")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	m := NewSQLInitManager(db, "prod")
	m.SetSQLRootPath(root)
	require.NoError(t, m.ExecuteInitialization(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInitializationRollsBackFile(t *testing.T) {
	root := t.TempDir()
	writeSQLFile(t, filepath.Join(root, "common"), "010_categories.sql",
		"INSERT INTO categories (name) VALUES ('Fiction');\nINSERT INTO nowhere VALUES (1);\n")

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO nowhere")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	m := NewSQLInitManager(db, "prod")
	m.SetSQLRootPath(root)
	err = m.ExecuteInitialization(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
