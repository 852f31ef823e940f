// Package sqlstore provides a relational implementation of the
// storage.Storage interface on top of Go's database/sql package.
//
// Two drivers are supported and selected by config:
//
//	sqlite3  (github.com/mattn/go-sqlite3) a single file on disk, the default
//	postgres (github.com/lib/pq)           a PostgreSQL server
//
// Queries are written once with ? placeholders and rebound to $N for
// postgres. Both dialects create their schema idempotently on startup.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/storage"
)

// Store is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db      *sql.DB
	dialect string
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		email      TEXT    NOT NULL UNIQUE,
		score1     REAL    NOT NULL,
		score2     REAL    NOT NULL,
		score3     REAL    NOT NULL,
		class_name TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lectures (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		date_created DATETIME NOT NULL,
		student_id   INTEGER  NOT NULL REFERENCES students (id)
	)`,
	`CREATE INDEX IF NOT EXISTS lectures_student_id_idx ON lectures (student_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(64)      NOT NULL,
		email      VARCHAR(120)     NOT NULL UNIQUE,
		score1     DOUBLE PRECISION NOT NULL,
		score2     DOUBLE PRECISION NOT NULL,
		score3     DOUBLE PRECISION NOT NULL,
		class_name VARCHAR(64)      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lectures (
		id           BIGSERIAL PRIMARY KEY,
		name         VARCHAR(64) NOT NULL,
		date_created TIMESTAMPTZ NOT NULL,
		student_id   BIGINT      NOT NULL REFERENCES students (id)
	)`,
	`CREATE INDEX IF NOT EXISTS lectures_student_id_idx ON lectures (student_id)`,
}

// New opens the database described by cfg, creates the schema if it
// does not already exist, and returns a ready-to-use *Store.
func New(ctx context.Context, cfg config.Storage) (*Store, error) {
	dsn := cfg.DSN
	schema := postgresSchema

	if cfg.Driver == config.DriverSQLite {
		// Foreign keys are off by default in SQLite and are enabled per
		// connection, so they go into the DSN.
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
		schema = sqliteSchema
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.New: open db: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer at a time, and every connection to
		// ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore.New: ping: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlstore.New: create schema: %w", err)
		}
	}

	return &Store{db: db, dialect: cfg.Driver}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into the $1, $2, ... form postgres expects.
func (s *Store) rebind(query string) string {
	if s.dialect != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps driver-specific constraint errors onto the storage
// sentinels so handlers never need to import a driver package.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", storage.ErrInvalidReference, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %v", storage.ErrInvalidReference, err)
		}
	}

	return err
}

// rollback is deferred after BeginTx; it is a no-op once Commit succeeded.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
