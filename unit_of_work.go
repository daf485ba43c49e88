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

package bookstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/models"
	"github.com/tomoncle/bookstore/repository"
	"github.com/tomoncle/bookstore/storedproc"
	"github.com/uptrace/bun"
)

var (
	ErrUnitOfWorkClosed = errors.New("unit of work is closed")
	ErrNoDatabase       = errors.New("database not initialized")
)

// UnitOfWork owns one connection taken from the pool for its whole life.
// It is not safe for concurrent use; create one per request.
type UnitOfWork struct {
	id         string
	conn       bun.Conn
	session    *repository.Session
	category   *repository.CategoryRepository
	book       repository.Repository[models.Book]
	procedures *storedproc.Caller
	logger     database.Logger
	closed     bool
}

// New takes a dedicated connection from db. The caller must Close the
// returned unit of work.
func New(ctx context.Context, db *bun.DB) (*UnitOfWork, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	uow := &UnitOfWork{
		id:     uuid.NewString(),
		conn:   conn,
		logger: database.GetLogger(),
	}
	uow.session = repository.NewSession(&uow.conn,
		repository.WithSessionID(uow.id),
		repository.WithLogger(uow.logger),
	)
	uow.category = repository.NewCategoryRepository(uow.session)
	uow.book = repository.NewRepository[models.Book](uow.session)
	uow.procedures = storedproc.NewCaller(db, uow.session)

	uow.logger.Debug("unit of work opened", "id", uow.id)
	return uow, nil
}

// Open is New over the global database set up by database.InitDB.
func Open(ctx context.Context) (*UnitOfWork, error) {
	return New(ctx, database.GetDB())
}

func (u *UnitOfWork) ID() string { return u.id }

func (u *UnitOfWork) Category() *repository.CategoryRepository { return u.category }

func (u *UnitOfWork) Book() repository.Repository[models.Book] { return u.book }

func (u *UnitOfWork) Procedures() *storedproc.Caller { return u.procedures }

// Save writes every staged change in one transaction. If any change fails
// nothing is written and the changes stay staged, so a retry after fixing the
// entities is possible; call Discard to drop them instead.
func (u *UnitOfWork) Save(ctx context.Context) error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	_, err := u.session.SaveChanges(ctx)
	return err
}

func (u *UnitOfWork) HasChanges() bool { return u.session.HasChanges() }

// Discard drops every staged change without writing it. The unit of work
// stays open.
func (u *UnitOfWork) Discard() error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.session.Discard()
	return nil
}

// Pending returns a copy of the staged changes in staging order.
func (u *UnitOfWork) Pending() []repository.Change { return u.session.Pending() }

// Close drops unsaved changes and returns the connection to the pool.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.closed = true
	if u.session.HasChanges() {
		u.logger.Warn("unit of work closed with unsaved changes", "id", u.id, "pending", len(u.session.Pending()))
	}
	u.session.Close()
	if err := u.conn.Close(); err != nil {
		u.logger.Error("release connection failed", "id", u.id, "error", err)
		return fmt.Errorf("release connection: %w", err)
	}
	u.logger.Debug("unit of work closed", "id", u.id)
	return nil
}

// WithUnitOfWork runs fn with a new unit of work and closes it afterwards,
// also when fn fails or panics. fn has to call Save itself.
func WithUnitOfWork(ctx context.Context, db *bun.DB, fn func(ctx context.Context, uow *UnitOfWork) error) (err error) {
	uow, err := New(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := uow.Close(); cerr != nil && !errors.Is(cerr, ErrUnitOfWorkClosed) && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, uow)
}
