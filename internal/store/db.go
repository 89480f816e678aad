// Package store keeps the chat directory in a SQLite database.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps a SQLite connection. Access is serialized since a sqlite3.Conn
// is not safe for concurrent use.
type DB struct {
	mu   sync.Mutex
	conn *sqlite3.Conn
}

// Open creates the parent directory if needed, opens the database at path
// and creates the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	conn, err := sqlite3.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

func (db *DB) exec(fn func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

func (db *DB) migrate() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('group', 'private'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_name ON chats(name)`,
	}
	for _, stmt := range ddl {
		if err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

// withStmt prepares query, runs fn and closes the statement, reporting the
// first error.
func withStmt(conn *sqlite3.Conn, query string, fn func(stmt *sqlite3.Stmt) error) (err error) {
	stmt, _, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stmt.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	return fn(stmt)
}
