package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open connects to the SQLite database stored at path, creating it if needed, and brings its schema up to
// date.
func Open(path string) (*sqlx.DB, error) {
	dbx, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite database %s: %w", path, err)
	}

	if err := Migrate(dbx.DB); err != nil {
		dbx.Close()
		return nil, err
	}
	return dbx, nil
}

// Migrate runs every pending migration embedded under migrations/ against DB.
func Migrate(DB *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("error setting dialect: %w", err)
	}
	if err := goose.Up(DB, "migrations"); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	return nil
}
