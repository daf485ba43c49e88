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

package repository

import "errors"

var (
	// ErrEntityNotFound is returned by Remove when no row has the given id.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrSessionClosed is returned by every operation after the session was closed.
	ErrSessionClosed = errors.New("session is closed")
	// ErrStaleEntity is returned when a staged update or removal matched no row.
	ErrStaleEntity = errors.New("entity no longer matches a row")
	ErrNilEntity   = errors.New("entity is nil")
)
