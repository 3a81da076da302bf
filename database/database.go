package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// Dialect names the SQL engine behind a Store.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned when a friend request transition finds no
	// pending row to move.
	ErrNotPending = errors.New("friend request is not pending")
)

// Store is the credential and relationship store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Connect opens a connection pool for dialect and verifies it.
func Connect(dialect Dialect, dsn string) (*sql.DB, error) {
	var driverName string
	switch dialect {
	case DialectMySQL:
		driverName = "mysql"
	case DialectSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// SQLite allows a single writer; one connection keeps transactions
		// from tripping over each other's locks.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	log.Printf("Database connected successfully (%s)", dialect)
	return db, nil
}

// NewStore wraps an open pool.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects, applies migrations and returns a ready Store.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	db, err := Connect(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db, dialect), nil
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rollback aborts tx after a failed step and returns the step's error.
func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		log.Printf("DB: transaction rollback failed: %v", rbErr)
	}
	return err
}
