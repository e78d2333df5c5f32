package database

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// InitDB opens the tracker database and applies pending migrations. When a
// Turso primary URL is set the remote libsql driver is used, otherwise a
// local sqlite file (or ":memory:") is opened. The returned teardown
// closes the handle.
func InitDB(dbPath, primaryURL, authToken, migrationsDir string) (*sql.DB, func(), error) {
	var (
		db  *sql.DB
		err error
	)

	if primaryURL != "" {
		url := fmt.Sprintf("%s?authToken=%s", primaryURL, authToken)
		db, err = sql.Open("libsql", url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open remote database %s: %w", primaryURL, err)
		}
		log.Info("Connected to remote database", "url", primaryURL)
	} else {
		db, err = sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
		}
		log.Info("Connected to local database", "path", dbPath)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db, migrationsDir); err != nil {
		db.Close()
		return nil, nil, err
	}

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	return db, teardown, nil
}

func runMigrations(db *sql.DB, migrationsDir string) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
