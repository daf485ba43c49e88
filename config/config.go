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

// Package config loads the bookstore configuration from a YAML file, an
// optional .env file and DB_* / LOG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/utils"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used by the CLI when BOOKSTORE_CONFIG is not set.
const DefaultPath = "configs/bookstore.yaml"

// Logging holds console logging settings.
type Logging struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Config is the root of configs/bookstore.yaml.
type Config struct {
	Database database.Config `yaml:"database"`
	Logging  Logging         `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(),
		Logging:  Logging{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the given .env files (".env" when none, missing files are
// ignored) and finally environment variables.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	database.OverrideFromEnv(&cfg.Database.ConnectionConfig)
	cfg.Database.DataInitConfig.Environment = utils.EnvDefaultString("DB_ENVIRONMENT", cfg.Database.DataInitConfig.Environment)
	cfg.Logging.Level = utils.EnvDefaultString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = utils.EnvDefaultString("LOG_FORMAT", cfg.Logging.Format)
	return cfg, nil
}

// ApplyLogging pushes the logging settings to every named logger.
func (c *Config) ApplyLogging() {
	utils.ConfigureLogLevel(c.Logging.Level)
	utils.ConfigureLogFormat(c.Logging.Format)
}
