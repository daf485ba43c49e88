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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_TYPE", "DB_HOST", "DB_PORT", "DB_NAME", "DB_ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, database.TypeSQLite, cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, "bookstore", cfg.Database.ConnectionConfig.DBName)
	assert.Equal(t, "prod", cfg.Database.DataInitConfig.Environment)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bookstore.yaml", `
database:
  connection:
    type: mysql
    host: db.local
    port: 3306
    username: shop
    dbname: bookstore
    conn_max_lifetime: 30m
    slow_query_time: 500ms
  migrate:
    enable_migrate_on_startup: true
    enable_foreign_key: false
  init:
    environment: dev
    filepath: configs/sql
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	conn := cfg.Database.ConnectionConfig
	assert.Equal(t, "mysql", conn.Type)
	assert.Equal(t, "db.local", conn.Host)
	assert.Equal(t, 3306, conn.Port)
	assert.Equal(t, 30*time.Minute, conn.ConnMaxLifetime)
	assert.Equal(t, 500*time.Millisecond, conn.SlowQueryTime)
	assert.Equal(t, 100, conn.MaxOpenConns, "unset keys keep their defaults")
	assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
	assert.False(t, cfg.Database.DataMigrateConfig.EnableForeignKey)
	assert.Equal(t, "dev", cfg.Database.DataInitConfig.Environment)
	assert.Equal(t, Logging{Level: "debug", Format: "json"}, cfg.Logging)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "override.local")
	t.Setenv("LOG_LEVEL", "warn")
	envFile := writeFile(t, "test.env", "BOOKSTORE_CONFIG_TEST_DBNAME=from_dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("BOOKSTORE_CONFIG_TEST_DBNAME") })

	path := writeFile(t, "bookstore.yaml", "database:\n  connection:\n    host: yaml.local\n")
	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "override.local", cfg.Database.ConnectionConfig.Host)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "from_dotenv", os.Getenv("BOOKSTORE_CONFIG_TEST_DBNAME"))
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "database: [unclosed")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestApplyLogging(t *testing.T) {
	l := utils.NewLogger("CONFIG_TEST")
	defer utils.ConfigureLogLevel("info")
	defer utils.ConfigureLogFormat("text")

	(&Config{Logging: Logging{Level: "error", Format: "json"}}).ApplyLogging()
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}
