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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const commonEnvironment = "common"

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SQLInitManager executes seed SQL files. Files under <root>/common run first,
// then those under <root>/environments/<environment>, each group ordered by
// its numeric file name prefix ("010_categories.sql").
type SQLInitManager struct {
	db          bun.IDB
	environment string
	sqlRootPath string
	logger      Logger
}

// SQLFileInfo describes a SQL file to be executed during initialization.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
	ModTime     time.Time
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Error        error
	Duration     time.Duration
	RowsAffected int64
}

func NewSQLInitManager(db bun.IDB, environment string) *SQLInitManager {
	return &SQLInitManager{
		db:          db,
		environment: environment,
		sqlRootPath: "configs/sql",
		logger:      GetLogger(),
	}
}

func (s *SQLInitManager) SetSQLRootPath(path string) {
	s.sqlRootPath = path
}

func (s *SQLInitManager) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ExecuteInitialization runs every discovered file, each in its own
// transaction, and stops at the first failure.
func (s *SQLInitManager) ExecuteInitialization(ctx context.Context) error {
	s.logger.Info("Starting SQL initialization", "environment", s.environment, "sql_path", s.sqlRootPath)

	files, err := s.GetSQLFiles()
	if err != nil {
		return fmt.Errorf("failed to get SQL files: %w", err)
	}
	if len(files) == 0 {
		s.logger.Info("No SQL files found to execute")
		return nil
	}

	for _, file := range files {
		result := s.executeFile(ctx, file)
		if result.Error != nil {
			s.logger.Error("SQL file execution failed", "file", result.File, "error", result.Error)
			return fmt.Errorf("SQL file execution failed %s: %w", result.File, result.Error)
		}
		s.logger.Info("SQL file executed successfully",
			"file", result.File,
			"duration", result.Duration,
			"rows_affected", result.RowsAffected,
		)
	}

	s.logger.Info("SQL initialization completed", "total_files", len(files), "environment", s.environment)
	return nil
}

// GetSQLFiles returns the files to execute in execution order. A missing
// common or environment directory is not an error.
func (s *SQLInitManager) GetSQLFiles() ([]SQLFileInfo, error) {
	commonFiles, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, commonEnvironment), commonEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to get common SQL files: %w", err)
	}
	envFiles, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, "environments", s.environment), s.environment)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment SQL files: %w", err)
	}

	files := append(commonFiles, envFiles...)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == commonEnvironment
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (s *SQLInitManager) getFilesFromDir(dir, environment string) ([]SQLFileInfo, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []SQLFileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       parseFileOrder(d.Name()),
			Environment: environment,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	return files, err
}

// parseFileOrder reads the numeric prefix of a file name; unnumbered files
// sort last.
func parseFileOrder(filename string) int {
	matches := fileOrderPattern.FindStringSubmatch(filename)
	if len(matches) > 1 {
		if order, err := strconv.Atoi(matches[1]); err == nil {
			return order
		}
	}
	return 999
}

func (s *SQLInitManager) executeFile(ctx context.Context, file SQLFileInfo) (result ExecutionResult) {
	start := time.Now()
	result.File = file.Path
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(file.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read file: %w", err)
		return result
	}
	text := string(content)
	if strings.Contains(text, "{{") {
		if text, err = s.renderTemplate(text); err != nil {
			result.Error = err
			return result
		}
	}
	statements := splitSQLStatements(text)
	if len(statements) == 0 {
		return result
	}

	result.Error = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, execErr := tx.ExecContext(ctx, stmt)
			if execErr != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, execErr)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.RowsAffected += n
			}
		}
		return nil
	})
	return result
}

// renderTemplate expands {{.NAME}} with environment variables, plus
// ENVIRONMENT and TIMESTAMP.
func (s *SQLInitManager) renderTemplate(content string) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = s.environment
	vars["TIMESTAMP"] = time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// splitSQLStatements splits on lines ending with ";" and drops "--" comment
// lines. The trailing ";" is kept.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
