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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes QueryHook and SlowQueryHook, e.g. while tables are
// being created.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
	"BEGIN":  color.New(color.FgCyan),
	"COMMIT": color.New(color.FgCyan),
}

var (
	hookTagColor  = color.New(color.FgCyan, color.Bold)
	slowTagColor  = color.New(color.FgYellow, color.Bold)
	errorColor    = color.New(color.BgRed, color.FgWhite)
	fallbackColor = color.New(color.FgRed)
)

func colorizeQuery(event *bun.QueryEvent) string {
	c, ok := operationColors[event.Operation()]
	if !ok {
		c = fallbackColor
	}
	return c.Sprint(event.Query)
}

// QueryHook prints every statement, colored by operation. The envName variable
// overrides enabled: "0" or empty disables, "2" also prints successful queries
// when verbose is off.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns an enabled hook writing to stdout and reading BUNDEBUG.
func NewQueryHook(verbose bool) *QueryHook {
	return &QueryHook{envName: "BUNDEBUG", enabled: true, verbose: verbose, writer: os.Stdout}
}

// WithWriter redirects hook output.
func (h *QueryHook) WithWriter(w io.Writer) *QueryHook {
	h.writer = w
	return h
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if env, ok := os.LookupEnv(h.envName); ok && h.envName != "" {
		enabled = env != "" && env != "0"
		verbose = verbose || env == "2"
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		hookTagColor.Sprintf("%10s", "[BUN]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", colorizeQuery(event),
	}
	if event.Err != nil {
		args = append(args, "\t", errorColor.Sprintf(" %T: %s ", event.Err, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

// SlowQueryHook reports successful statements slower than slowTime through
// the database logger, and to writer when one is set. SLOW_QUERY_LOG=0
// disables it.
type SlowQueryHook struct {
	fromEnv  string
	slowTime time.Duration
	logger   Logger
	writer   io.Writer
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{fromEnv: "SLOW_QUERY_LOG", slowTime: slowTime, logger: logger}
}

// WithWriter additionally prints slow statements to w.
func (h *SlowQueryHook) WithWriter(w io.Writer) *SlowQueryHook {
	h.writer = w
	return h
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err != nil {
		return
	}
	if env, ok := os.LookupEnv(h.fromEnv); ok && strings.TrimSpace(env) == "0" {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	if h.logger != nil {
		h.logger.Warn("slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
	if h.writer != nil {
		_, _ = fmt.Fprintln(h.writer,
			time.Now().Format("2006-01-02 15:04:05.000"),
			slowTagColor.Sprintf("%10s", "[BUN_SLOW]"),
			fmt.Sprintf("%12s", duration.Round(time.Microsecond)),
			" ", colorizeQuery(event),
		)
	}
}
