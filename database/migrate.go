package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// Migrate applies the embedded migrations for dialect, each at most once.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	root := path.Join("migrations", string(dialect))
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name       VARCHAR(255) PRIMARY KEY,
		applied_at DATETIME NOT NULL
	)`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(file, ".sql")

		var applied bool
		err := db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM "+migrationTable+" WHERE name = ?)", name,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(ctx, db, name, string(content)); err != nil {
			return err
		}
		log.Printf("Applied migration %s", name)
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}

	// The MySQL driver runs one statement per Exec. MySQL also commits each
	// DDL statement implicitly, so there the transaction only covers the
	// bookkeeping insert; keep MySQL migrations to one DDL statement per file.
	for _, stmt := range splitStatements(content) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return rollback(tx, fmt.Errorf("exec migration %s: %w", name, err))
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)", name, time.Now(),
	); err != nil {
		return rollback(tx, fmt.Errorf("record migration %s: %w", name, err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
