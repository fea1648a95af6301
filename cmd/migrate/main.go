// Package main applies the SQL migrations under migrations/ to DATABASE_URL.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	var (
		action string
		steps  int
		path   string
	)

	flag.StringVar(&action, "action", "up", "migration action: up, down, force, version")
	flag.IntVar(&steps, "steps", 0, "number of steps for up/down, or the version for force")
	flag.StringVar(&path, "path", "migrations", "directory holding the migration files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	if err := run(action, steps, path, os.Getenv("DATABASE_URL"), logger); err != nil {
		logger.Error("migration failed", "action", action, "error", err)
		os.Exit(1)
	}
}

func run(action string, steps int, path, databaseURL string, logger *slog.Logger) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("load migrations from %s: %w", path, err)
	}

	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		err = m.Force(steps)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if verr != nil {
			return fmt.Errorf("read version: %w", verr)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info("migration complete", "action", action)
	return nil
}
