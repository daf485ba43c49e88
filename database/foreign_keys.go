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
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"gopkg.in/yaml.v3"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update"`
	ConstraintName  string `yaml:"constraint_name"`
	Description     string `yaml:"description,omitempty"`
}

// ForeignKeyConfig is the YAML document listing foreign key constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)

	if fk.OnDelete != "" {
		sql += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		sql += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return sql
}

// defaultForeignKeys are used when no configuration file can be read.
func defaultForeignKeys() []ForeignKeyConstraint {
	return []ForeignKeyConstraint{
		{
			Table:           "books",
			Column:          "category_id",
			ReferenceTable:  "categories",
			ReferenceColumn: "id",
			OnDelete:        "RESTRICT",
			OnUpdate:        "CASCADE",
		},
	}
}

// ForeignKeyManager adds and validates foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the built-in constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{
		constraints: defaultForeignKeys(),
		logger:      logger,
	}
}

// NewConfigurableForeignKeyManager loads constraints from the YAML file at
// configPath, falling back to the built-in constraints when it cannot be read.
func NewConfigurableForeignKeyManager(logger Logger, configPath string) *ForeignKeyManager {
	constraints, err := LoadForeignKeyConfig(configPath)
	if err != nil {
		if logger != nil {
			logger.Debug("Using built-in foreign key constraints", "error", err, "config_path", configPath)
		}
		constraints = defaultForeignKeys()
	}
	return &ForeignKeyManager{constraints: constraints, logger: logger}
}

// LoadForeignKeyConfig reads constraints from a YAML file.
func LoadForeignKeyConfig(path string) ([]ForeignKeyConstraint, error) {
	if path == "" {
		return nil, fmt.Errorf("no foreign key config file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config ForeignKeyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config.ForeignKeys, nil
}

// AddAllForeignKeys adds every constraint to db. Failures, typically a
// constraint that already exists, are logged and skipped. SQLite cannot alter
// constraints, so nothing is done there.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		if fkm.logger != nil {
			fkm.logger.Debug("Skipping foreign keys, not supported by sqlite ALTER TABLE")
		}
		return nil
	}
	for _, constraint := range fkm.constraints {
		if _, err := db.ExecContext(ctx, constraint.GenerateSQL()); err != nil {
			if fkm.logger != nil {
				fkm.logger.Debug("Failed to add foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err)
			}
			continue
		}
		if fkm.logger != nil {
			fkm.logger.Debug("Added foreign key constraint", "constraint", constraint.GenerateConstraintName())
		}
	}
	return nil
}

// RemoveForeignKey drops a named foreign key from a table.
func (fkm *ForeignKeyManager) RemoveForeignKey(ctx context.Context, db bun.IDB, tableName, constraintName string) error {
	var sql string
	switch db.Dialect().Name() {
	case dialect.MySQL:
		sql = fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", tableName, constraintName)
	case dialect.SQLite:
		return fmt.Errorf("sqlite cannot drop constraint %s", constraintName)
	default:
		sql = fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", tableName, constraintName)
	}
	_, err := db.ExecContext(ctx, sql)
	return err
}

// GetConstraintsByTable returns the constraints defined for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

var validForeignKeyActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

func validForeignKeyAction(action string) bool {
	for _, valid := range validForeignKeyActions {
		if strings.EqualFold(action, valid) {
			return true
		}
	}
	return false
}

// ValidateConstraints checks the configured constraints for missing names and
// unknown referential actions.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error

	for _, constraint := range fkm.constraints {
		if constraint.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if constraint.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", constraint.Table))
		}
		if constraint.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", constraint.Table, constraint.Column))
		}
		if constraint.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", constraint.Table, constraint.Column, constraint.ReferenceTable))
		}
		if constraint.OnDelete != "" && !validForeignKeyAction(constraint.OnDelete) {
			errs = append(errs, fmt.Errorf("invalid delete policy: %s, constraint: %s", constraint.OnDelete, constraint.GenerateConstraintName()))
		}
		if constraint.OnUpdate != "" && !validForeignKeyAction(constraint.OnUpdate) {
			errs = append(errs, fmt.Errorf("invalid update policy: %s, constraint: %s", constraint.OnUpdate, constraint.GenerateConstraintName()))
		}
	}
	return errs
}
