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
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/tomoncle/bookstore/config"
	"github.com/tomoncle/bookstore/database"
	"github.com/tomoncle/bookstore/utils"
	"golang.org/x/term"
)

const usage = `usage: bookstore [-config file] <command> [args]

commands:
  migrate                         create tables and foreign keys
  seed                            execute the SQL seed files
  health                          ping the database and print pool stats
  categories list                 list categories
  categories add [-order n] NAME  add a category
  categories rename ID NAME       rename a category
  categories remove ID            remove a category
`

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

type app struct {
	out io.Writer
	in  *os.File
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, in: os.Stdin}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		errColor.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bookstore", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.Usage = func() { fmt.Fprint(a.out, usage) }
	configPath := fs.String("config", defaultConfigPath(), "path to the YAML configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyLogging()
	if err = a.promptPassword(&cfg.Database.ConnectionConfig); err != nil {
		return err
	}

	if _, err = database.InitDBContext(ctx, &cfg.Database); err != nil {
		return err
	}
	defer func() { _ = database.CloseDB() }()

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "migrate":
		if err = database.RunMigrations(ctx); err != nil {
			return err
		}
		okColor.Fprintln(a.out, "migrations applied")
	case "seed":
		if err = database.InitData(ctx); err != nil {
			return err
		}
		okColor.Fprintln(a.out, "seed files executed")
	case "health":
		return a.health(ctx)
	case "categories":
		return a.categories(ctx, rest)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// defaultConfigPath prefers BOOKSTORE_CONFIG, then configs/bookstore.yaml
// when it exists. An empty path runs on defaults and environment only.
func defaultConfigPath() string {
	if p := utils.EnvDefaultString("BOOKSTORE_CONFIG", ""); p != "" {
		return p
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.DefaultPath
	}
	return ""
}

// promptPassword asks for the database password on an interactive terminal
// when a server database is configured without one.
func (a *app) promptPassword(cfg *database.ConnectionConfig) error {
	if cfg.Password != "" || cfg.Username == "" || cfg.Type == database.TypeSQLite {
		return nil
	}
	if a.in == nil || !term.IsTerminal(int(a.in.Fd())) {
		return nil
	}
	fmt.Fprintf(a.out, "password for %s@%s: ", cfg.Username, cfg.Host)
	password, err := term.ReadPassword(int(a.in.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	cfg.Password = string(password)
	return nil
}

func (a *app) health(ctx context.Context) error {
	status := database.GetHealthStatus(ctx)
	stats := database.GetDatabaseStats()
	if !status.Healthy {
		warnColor.Fprintf(a.out, "unhealthy: %s\n", status.LastError)
		return errors.New("database is unhealthy")
	}
	okColor.Fprintf(a.out, "healthy (%s)\n", status.ResponseTime)
	fmt.Fprintf(a.out, "open=%d in_use=%d idle=%d max_open=%d\n", stats.OpenConns, stats.InUse, stats.Idle, stats.MaxOpenConns)
	return nil
}
