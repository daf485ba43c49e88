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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

// connector is what createConnection needs to open a *sql.DB and wrap it in bun.
type connector struct {
	driverName string
	dsn        string
	dialect    func() schema.Dialect
}

// normalizeType maps type aliases onto the canonical Type* constants.
func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "mysql", "mariadb":
		return TypeMySQL
	case "postgres", "postgresql", "pg":
		return TypePostgres
	case "sqlite", "sqlite3":
		return TypeSQLite
	}
	return t
}

func newConnector(cfg *ConnectionConfig) (*connector, error) {
	switch normalizeType(cfg.Type) {
	case TypeMySQL:
		return &connector{"mysql", mysqlDSN(cfg), func() schema.Dialect { return mysqldialect.New() }}, nil
	case TypePostgres:
		driverName := "postgres"
		switch strings.ToLower(cfg.Driver) {
		case "", DriverPQ:
		case DriverPGX:
			driverName = "pgx"
		default:
			return nil, fmt.Errorf("unsupported postgres driver: %s, supported drivers: %v", cfg.Driver, []string{DriverPQ, DriverPGX})
		}
		return &connector{driverName, postgresDSN(cfg), func() schema.Dialect { return pgdialect.New() }}, nil
	case TypeSQLite:
		return &connector{sqliteshim.ShimName, sqliteDSN(cfg), func() schema.Dialect { return sqlitedialect.New() }}, nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
}

// mysqlDSN reports matched rather than changed rows, so an update that writes
// the current values still counts as affecting its row.
func mysqlDSN(cfg *ConnectionConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.DBName
	c.ParseTime = true
	c.Loc = time.Local
	c.Timeout = cfg.ConnectTimeout
	c.ReadTimeout = cfg.ReadTimeout
	c.WriteTimeout = cfg.WriteTimeout
	c.ClientFoundRows = true
	c.MultiStatements = false
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	c.Params = map[string]string{"charset": charset}
	return c.FormatDSN()
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(cfg.ConnectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// sqliteDSN uses DBName as a file path, appending ".db" when it has no
// extension. ":memory:" and "file:" URIs are passed through.
func sqliteDSN(cfg *ConnectionConfig) string {
	name := cfg.DBName
	switch {
	case name == ":memory:", strings.HasPrefix(name, "file:"):
		return name
	case strings.Contains(name[strings.LastIndex(name, "/")+1:], "."):
		return name
	}
	return name + ".db"
}
