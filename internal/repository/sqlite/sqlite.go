// Package sqlite implements the repository interfaces on SQLite.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the binary as a single
// file. No separate database server to install or manage, which fits a
// single-server deployment, and ":memory:" gives tests a fresh, disposable
// database per test.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure-Go translation of
// SQLite — works everywhere Go works.
//
// MIGRATIONS:
// Schema changes live as numbered SQL files embedded into the binary and are
// applied once at startup by golang-migrate, which tracks the applied version
// in its own table. Production code then assumes the final schema — there is
// no "try the query, fall back if a column is missing" branching anywhere.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sql.DB connection pool shared by the entity repos
// (SnippetRepo, FolderRepo, TagRepo, UserRepo). One pool, one migration run,
// one transaction helper.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, configures it, and applies
// pending migrations. Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A pooled ":memory:" database would hand every new connection its own
	// empty database. One connection keeps tests looking at the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Surface a bad path or permissions problem now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — important
	// for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. The schema relies on them:
	// folder deletion nulls snippets.folder_id, snippet deletion cascades to
	// versions and tag links.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate applies all pending migrations from the embedded FS.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	// ErrNoChange just means the schema is already current.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error. Multi-statement operations (version snapshot + update, tag create +
// link) go through here so partial state is never persisted.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
