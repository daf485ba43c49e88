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

package storedproc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/uptrace/bun/dialect"
)

var (
	ErrProceduresUnsupported = errors.New("stored procedures are not supported by this database")
	ErrInvalidProcedureName  = errors.New("invalid procedure name")
	ErrInvalidParamName      = errors.New("invalid parameter name")
	// ErrNotSingleValue is returned by Single when the result is not exactly
	// one row with one column.
	ErrNotSingleValue = errors.New("procedure did not return a single value")
	// ErrMissingResultSet is returned when fewer result sets came back than
	// the call expects.
	ErrMissingResultSet = errors.New("procedure returned fewer result sets than expected")
)

var (
	identPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)
	procedurePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)
)

type callMode int

const (
	modeQuery callMode = iota
	modeExec
)

// buildCall renders the call statement for name with one bun placeholder per
// parameter.
func buildCall(name dialect.Name, mode callMode, procedure string, params *Params) (string, error) {
	procedure = strings.TrimSpace(procedure)
	if !procedurePattern.MatchString(procedure) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProcedureName, procedure)
	}

	switch name {
	case dialect.MySQL:
		return "CALL " + procedure + "(" + placeholders(params.Len()) + ")", nil
	case dialect.PG:
		args := make([]string, 0, params.Len())
		for _, p := range params.Items() {
			if !identPattern.MatchString(p.Name) {
				return "", fmt.Errorf("%w: %q", ErrInvalidParamName, p.Name)
			}
			args = append(args, p.Name+" => ?")
		}
		call := procedure + "(" + strings.Join(args, ", ") + ")"
		if mode == modeExec {
			return "CALL " + call, nil
		}
		return "SELECT * FROM " + call, nil
	}
	return "", fmt.Errorf("%w: %s", ErrProceduresUnsupported, name)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
