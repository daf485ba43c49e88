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
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalFactory *BaseDatabaseFactory
)

// GetDB returns the global bun database, or nil before InitDB.
func GetDB() *bun.DB {
	if f := factory(); f != nil {
		return f.GetDB()
	}
	return nil
}

func factory() *BaseDatabaseFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactory
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	if f := factory(); f != nil {
		return f.GetManager()
	}
	return nil
}

// InitDB connects the global database, creating tables when
// EnableMigrateOnStartup is set and seeding when AutoInitOnStartup is set.
func InitDB(cfg *Config) (*bun.DB, error) {
	return InitDBContext(context.Background(), cfg)
}

func InitDBContext(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	f := NewDatabaseFactory()
	manager, err := f.CreateFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := f.InitializeDatabase(ctx, cfg.DataMigrateConfig.EnableMigrateOnStartup); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.DataInitConfig.AutoInitOnStartup {
		if err := manager.InitData(ctx); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to initialize data: %w", err)
		}
	}

	globalMu.Lock()
	previous := globalFactory
	globalFactory = f
	globalMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	return manager.GetDB(), nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	f := globalFactory
	globalFactory = nil
	globalMu.Unlock()
	if f != nil {
		return f.Close()
	}
	return nil
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if f := factory(); f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: "Database not initialized"}
}

// GetDatabaseStats returns global connection pool statistics.
func GetDatabaseStats() *DBStats {
	if f := factory(); f != nil {
		return f.GetStats()
	}
	return &DBStats{}
}

// RunMigrations creates the tables of registered models on the global database.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.RunMigrations(ctx)
}

// InitData executes the configured seed SQL files on the global database.
func InitData(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.InitData(ctx)
}
