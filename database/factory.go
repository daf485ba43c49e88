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
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

var supportedTypes = []string{TypeMySQL, TypePostgres, TypeSQLite}

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig builds a database manager from cfg after applying
// environment overrides to its connection settings.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *Config) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	conn := &cfg.ConnectionConfig
	OverrideFromEnv(conn)

	conn.Type = normalizeType(conn.Type)
	supported := false
	for _, t := range supportedTypes {
		if conn.Type == t {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", conn.Type, supportedTypes)
	}

	manager := NewDatabaseManager(conn)
	manager.SetLogger(f.logger)
	WithMigrationConfig(manager, cfg.DataMigrateConfig, cfg.DataInitConfig)

	f.manager = manager
	return manager, nil
}

// OverrideFromEnv overrides connection settings from DB_* environment
// variables. Durations are given in seconds.
func OverrideFromEnv(cfg *ConnectionConfig) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = v
		}
	}
	setSeconds := func(key string, dst *time.Duration) {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = time.Duration(v) * time.Second
		}
	}
	setBool := func(key string, dst *bool) {
		if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
			*dst = v
		}
	}

	setString("DB_TYPE", &cfg.Type)
	setString("DB_DRIVER", &cfg.Driver)
	setString("DB_HOST", &cfg.Host)
	setInt("DB_PORT", &cfg.Port)
	setString("DB_USERNAME", &cfg.Username)
	setString("DB_PASSWORD", &cfg.Password)
	setString("DB_NAME", &cfg.DBName)
	setString("DB_SSLMODE", &cfg.SSLMode)

	setInt("DB_MAX_IDLE_CONNS", &cfg.MaxIdleConns)
	setInt("DB_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	setSeconds("DB_CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime)

	setBool("DB_ENABLE_RECONNECT", &cfg.EnableReconnect)
	setSeconds("DB_RECONNECT_INTERVAL", &cfg.ReconnectInterval)

	setBool("DB_ENABLE_QUERY_LOG", &cfg.EnableQueryLog)
	setString("DB_QUERY_LOG_FORMAT", &cfg.QueryLogFormat)
	setSeconds("DB_SLOW_QUERY_TIME", &cfg.SlowQueryTime)
}

// InitializeDatabase connects to the database and optionally runs migrations.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed")
	return nil
}

func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the bun database, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
