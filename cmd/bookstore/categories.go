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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/tomoncle/bookstore"
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/models"
	"github.com/tomoncle/bookstore/repository"
)

func (a *app) categories(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("categories: missing subcommand (list, add, rename, remove)")
	}
	db := database.GetDB()
	switch args[0] {
	case "list":
		return bookstore.WithUnitOfWork(ctx, db, a.listCategories)
	case "add":
		fs := flag.NewFlagSet("categories add", flag.ContinueOnError)
		fs.SetOutput(a.out)
		order := fs.Int("order", 0, "display order")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("categories add: expected NAME")
		}
		return bookstore.WithUnitOfWork(ctx, db, func(ctx context.Context, uow *bookstore.UnitOfWork) error {
			category := &models.Category{Name: fs.Arg(0), DisplayOrder: *order}
			if err := uow.Category().Add(category); err != nil {
				return err
			}
			if err := uow.Save(ctx); err != nil {
				return err
			}
			okColor.Fprintf(a.out, "added category %d %q\n", category.ID, category.Name)
			return nil
		})
	case "rename":
		if len(args) != 3 {
			return errors.New("categories rename: expected ID NAME")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return bookstore.WithUnitOfWork(ctx, db, func(ctx context.Context, uow *bookstore.UnitOfWork) error {
			current, err := uow.Category().Get(ctx, id)
			if err != nil {
				return err
			}
			if current == nil {
				warnColor.Fprintf(a.out, "category %d not found, nothing renamed\n", id)
				return nil
			}
			if err := uow.Category().Update(ctx, &models.Category{ID: id, Name: args[2]}); err != nil {
				return err
			}
			okColor.Fprintf(a.out, "category %d renamed from %q to %q\n", id, current.Name, args[2])
			return nil
		})
	case "remove":
		if len(args) != 2 {
			return errors.New("categories remove: expected ID")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return bookstore.WithUnitOfWork(ctx, db, func(ctx context.Context, uow *bookstore.UnitOfWork) error {
			if err := uow.Category().Remove(ctx, id); err != nil {
				return err
			}
			if err := uow.Save(ctx); err != nil {
				return err
			}
			okColor.Fprintf(a.out, "category %d removed\n", id)
			return nil
		})
	}
	return fmt.Errorf("categories: unknown subcommand %q", args[0])
}

func (a *app) listCategories(ctx context.Context, uow *bookstore.UnitOfWork) error {
	categories, err := uow.Category().GetAll(ctx, nil, repository.OrderBy("display_order ASC", "name ASC"))
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		warnColor.Fprintln(a.out, "no categories")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tORDER")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.Name, c.DisplayOrder)
	}
	return w.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid category id %q", s)
	}
	return id, nil
}
