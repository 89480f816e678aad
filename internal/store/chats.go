package store

import (
	"fmt"

	"github.com/ncruces/go-sqlite3"

	"github.com/autobot-dev/autobot/internal/directory"
)

// ChatRepo reads and edits the chats table.
type ChatRepo struct {
	db *DB
}

func NewChatRepo(db *DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// List returns every chat ordered by id.
func (r *ChatRepo) List() ([]directory.Entry, error) {
	var entries []directory.Entry
	err := r.db.exec(func() error {
		return withStmt(r.db.conn, "SELECT id, name, type FROM chats ORDER BY id", func(stmt *sqlite3.Stmt) error {
			for stmt.Step() {
				entries = append(entries, directory.Entry{
					ID:   stmt.ColumnInt64(0),
					Name: stmt.ColumnText(1),
					Type: directory.ChatType(stmt.ColumnText(2)),
				})
			}
			return stmt.Err()
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return entries, nil
}

// Upsert inserts e or replaces the chat with the same id.
func (r *ChatRepo) Upsert(e directory.Entry) error {
	if _, err := directory.ParseChatType(string(e.Type)); err != nil {
		return err
	}
	return r.db.exec(func() error {
		return withStmt(r.db.conn, `INSERT INTO chats (id, name, type) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type`, func(stmt *sqlite3.Stmt) error {
			stmt.BindInt64(1, e.ID)
			stmt.BindText(2, e.Name)
			stmt.BindText(3, string(e.Type))
			stmt.Step()
			return stmt.Err()
		})
	})
}

// Delete removes the chat with id and reports whether a row was removed.
func (r *ChatRepo) Delete(id int64) (bool, error) {
	var changed bool
	err := r.db.exec(func() error {
		return withStmt(r.db.conn, "DELETE FROM chats WHERE id = ?", func(stmt *sqlite3.Stmt) error {
			stmt.BindInt64(1, id)
			stmt.Step()
			if err := stmt.Err(); err != nil {
				return err
			}
			changed = r.db.conn.Changes() > 0
			return nil
		})
	})
	return changed, err
}

// LoadDirectory opens the database at path and returns its chats.
func LoadDirectory(path string) ([]directory.Entry, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return NewChatRepo(db).List()
}
