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

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tomoncle/bookstore/database"
	"github.com/uptrace/bun"
)

// Session is the state shared by every repository of one unit of work: the
// connection all reads and writes go through and the pending ChangeSet.
// A Session does not own its connection and never closes it.
type Session struct {
	id       string
	db       bun.IDB
	changes  ChangeSet
	validate *validator.Validate
	logger   database.Logger
	closed   bool
}

type SessionOption func(*Session)

// WithSessionID overrides the random session id used in log lines.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

func WithValidator(v *validator.Validate) SessionOption {
	return func(s *Session) { s.validate = v }
}

func WithLogger(l database.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession binds a session to db, typically a *bun.Conn.
func NewSession(db bun.IDB, opts ...SessionOption) *Session {
	s := &Session{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.validate == nil {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if s.logger == nil {
		s.logger = database.GetLogger()
	}
	return s
}

func (s *Session) ID() string { return s.id }

// DB returns the shared connection, or ErrSessionClosed.
func (s *Session) DB() (bun.IDB, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.db, nil
}

func (s *Session) Stage(kind ChangeKind, model interface{}, columns ...string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.changes.Stage(kind, model, columns...); err != nil {
		return err
	}
	s.logger.Debug("change staged", "session", s.id, "kind", kind, "model", modelName(model))
	return nil
}

func (s *Session) HasChanges() bool { return s.changes.Len() > 0 }

func (s *Session) Pending() []Change { return s.changes.Pending() }

// SaveChanges validates every pending change and applies them all inside one
// transaction. On failure nothing is written and the changes stay pending; on
// success they are cleared. It returns the number of changes written.
func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	n := s.changes.Len()
	if n == 0 {
		return 0, nil
	}
	if err := s.changes.Validate(s.validate); err != nil {
		s.logger.Error("validation failed", "session", s.id, "error", err)
		return 0, fmt.Errorf("validate changes: %w", err)
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.changes.Apply(ctx, &tx)
	})
	if err != nil {
		s.logger.Error("save changes failed, rolled back", "session", s.id, "pending", n, "error", err)
		return 0, fmt.Errorf("save changes: %w", err)
	}
	s.changes.Clear()
	s.logger.Debug("changes saved", "session", s.id, "count", n)
	return n, nil
}

// Discard drops every pending change.
func (s *Session) Discard() {
	if n := s.changes.Len(); n > 0 {
		s.logger.Debug("pending changes discarded", "session", s.id, "count", n)
	}
	s.changes.Clear()
}

// Close discards pending changes and rejects further use. It is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.Discard()
	s.closed = true
}

func (s *Session) Closed() bool { return s.closed }
