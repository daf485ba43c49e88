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

package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		" DEBUG ": logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestNewLoggerIsRegistered(t *testing.T) {
	a := NewLogger("REGISTRY_TEST")
	b := NewLogger("REGISTRY_TEST")
	assert.Same(t, a, b)

	assert.True(t, SetLoggerLevel("REGISTRY_TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("NOT_REGISTERED", "debug"))
}

func TestNamedTextFormatter(t *testing.T) {
	f := &NamedTextFormatter{LoggerName: "BOOKSTORE"}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow query",
		Data:    logrus.Fields{"table": "categories", "duration": "3s"},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2025-01-02 03:04:05.000"))
	assert.Contains(t, line, "WARNING")
	assert.Contains(t, line, "[BOOKSTORE ]")
	assert.Contains(t, line, "slow query duration=3s table=categories")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestConfigureLogOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("OUTPUT_TEST")
	ConfigureLogOutput(&buf)
	l.SetLevel(logrus.InfoLevel)

	l.Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "[OUTPUT_TEST]")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("BOOKSTORE_TEST_STR", "value")
	t.Setenv("BOOKSTORE_TEST_BOOL", "true")
	t.Setenv("BOOKSTORE_TEST_BAD_BOOL", "nope")

	assert.Equal(t, "value", EnvDefaultString("BOOKSTORE_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefaultString("BOOKSTORE_TEST_MISSING", "def"))
	assert.True(t, EnvDefaultBool("BOOKSTORE_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("BOOKSTORE_TEST_BAD_BOOL", true))
	assert.False(t, EnvDefaultBool("BOOKSTORE_TEST_MISSING", false))
}
