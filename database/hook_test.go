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
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type logRecord struct {
	level  string
	msg    string
	fields []interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) add(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{level, msg, fields})
}

func (l *recordingLogger) SetLevel(LogLevel)                  {}
func (l *recordingLogger) Debug(msg string, f ...interface{}) { l.add("debug", msg, f) }
func (l *recordingLogger) Info(msg string, f ...interface{})  { l.add("info", msg, f) }
func (l *recordingLogger) Warn(msg string, f ...interface{})  { l.add("warn", msg, f) }
func (l *recordingLogger) Error(msg string, f ...interface{}) { l.add("error", msg, f) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, r := range l.records {
		if r.level == level {
			out = append(out, r.msg)
		}
	}
	return out
}

func TestQueryHookPrintsFailedQueries(t *testing.T) {
	t.Setenv("BUNDEBUG", "1")
	var buf bytes.Buffer
	hook := NewQueryHook(false).WithWriter(&buf)

	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "SELECT * FROM categories",
		StartTime: time.Now(),
	})
	assert.Empty(t, buf.String(), "successful queries are quiet unless verbose")

	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "INSERT INTO categories (name) VALUES ('x')",
		StartTime: time.Now(),
		Err:       errors.New("UNIQUE constraint failed"),
	})
	out := buf.String()
	assert.Contains(t, out, "[BUN]")
	assert.Contains(t, out, "INSERT INTO categories")
	assert.Contains(t, out, "UNIQUE constraint failed")
}

func TestQueryHookVerboseAndSilent(t *testing.T) {
	t.Setenv("BUNDEBUG", "2")
	var buf bytes.Buffer
	hook := NewQueryHook(false).WithWriter(&buf)
	event := &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()}

	hook.AfterQuery(context.Background(), event)
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	EnableBunSqlSilent(true)
	defer EnableBunSqlSilent(false)
	hook.AfterQuery(context.Background(), event)
	assert.Empty(t, buf.String())

	EnableBunSqlSilent(false)
	t.Setenv("BUNDEBUG", "0")
	hook.AfterQuery(context.Background(), event)
	assert.Empty(t, buf.String())
}

func TestSlowQueryHook(t *testing.T) {
	t.Setenv("SLOW_QUERY_LOG", "1")
	logger := &recordingLogger{}
	var buf bytes.Buffer
	hook := NewSlowQueryHook(50*time.Millisecond, logger).WithWriter(&buf)

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT fast", StartTime: time.Now()})
	assert.Empty(t, logger.messages("warn"))

	slow := &bun.QueryEvent{Query: "SELECT slow", StartTime: time.Now().Add(-time.Second)}
	hook.AfterQuery(context.Background(), slow)
	require.Equal(t, []string{"slow query detected"}, logger.messages("warn"))
	assert.Contains(t, buf.String(), "[BUN_SLOW]")
	assert.Contains(t, buf.String(), "SELECT slow")

	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "SELECT failed",
		StartTime: time.Now().Add(-time.Second),
		Err:       fmt.Errorf("boom"),
	})
	assert.Len(t, logger.messages("warn"), 1, "failed queries are not reported as slow")

	t.Setenv("SLOW_QUERY_LOG", "0")
	hook.AfterQuery(context.Background(), slow)
	assert.Len(t, logger.messages("warn"), 1)
}
