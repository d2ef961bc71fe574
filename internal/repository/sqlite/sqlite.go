// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The service keeps everything in one database file next to the binary. SQLite
// needs no server, and ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without CGo and
// cross-compiles like any other Go program.
//
// SCHEMA LIFECYCLE:
// By default the schema is dropped and recreated every time New runs, so data
// lives for one process lifetime. Options.Reset=false keeps existing tables.
// There are no migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository interface.
type DB struct {
	conn *sql.DB
}

// Options control how New prepares the database.
type Options struct {
	// Reset drops every table before creating the schema.
	Reset bool
	// ForeignKeys turns on PRAGMA foreign_keys. The REFERENCES clauses are
	// always declared; SQLite only enforces them when this is set.
	ForeignKeys bool
}

// New opens the database at dbPath and prepares the schema.
//
// dbPath examples:
//   - "data/site.db" → file-based database
//   - ":memory:"     → in-memory database (tests)
func New(dbPath string, opts Options) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// SQLite allows a single writer at a time, and PRAGMAs plus ":memory:"
	// databases are per connection. One pooled connection keeps every request
	// on the same database and lets database/sql queue concurrent callers.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	fk := "OFF"
	if opts.ForeignKeys {
		fk = "ON"
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=" + fk); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if opts.Reset {
		if err := db.dropSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: dropping schema: %w", err)
		}
	}
	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database still answers. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// tables lists the schema in dependency order: referenced tables first.
var tables = []struct {
	name string
	ddl  string
}{
	{"registrations", `
		CREATE TABLE IF NOT EXISTS registrations (
			firebase_uid TEXT PRIMARY KEY,
			username     TEXT NOT NULL,
			email        TEXT NOT NULL,
			password     TEXT NOT NULL
		)`},
	{"user_profiles", `
		CREATE TABLE IF NOT EXISTS user_profiles (
			firebase_uid        TEXT PRIMARY KEY REFERENCES registrations(firebase_uid),
			child_name          TEXT NOT NULL,
			child_age           INTEGER NOT NULL,
			parent_name         TEXT NOT NULL,
			parent_phone_number INTEGER NOT NULL,
			address             TEXT NOT NULL
		)`},
	{"questions", `
		CREATE TABLE IF NOT EXISTS questions (
			id          INTEGER PRIMARY KEY,
			quiz_id     INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			options     TEXT NOT NULL
		)`},
	{"quiz_results", `
		CREATE TABLE IF NOT EXISTS quiz_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			firebase_uid   TEXT NOT NULL REFERENCES registrations(firebase_uid),
			quiz_id        INTEGER NOT NULL,
			question1_id   INTEGER NOT NULL REFERENCES questions(id),
			question2_id   INTEGER NOT NULL REFERENCES questions(id),
			question3_id   INTEGER NOT NULL REFERENCES questions(id),
			question4_id   INTEGER NOT NULL REFERENCES questions(id),
			question5_id   INTEGER NOT NULL REFERENCES questions(id),
			average_result INTEGER NOT NULL,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"predictions", `
		CREATE TABLE IF NOT EXISTS predictions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			firebase_uid     TEXT NOT NULL REFERENCES registrations(firebase_uid),
			predicted_values REAL NOT NULL,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_uid ON quiz_results(firebase_uid)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_uid ON predictions(firebase_uid)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id)`,
}

func (db *DB) createSchema() error {
	for _, t := range tables {
		if _, err := db.conn.Exec(t.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", t.name, err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// dropSchema removes tables in reverse dependency order so foreign keys never
// block a drop.
func (db *DB) dropSchema() error {
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.conn.Exec("DROP TABLE IF EXISTS " + tables[i].name); err != nil {
			return fmt.Errorf("dropping %s table: %w", tables[i].name, err)
		}
	}
	return nil
}
