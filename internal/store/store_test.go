package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot-dev/autobot/internal/directory"
)

func testDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chats.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestOpenCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "chats.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestChatRepo_UpsertListDelete(t *testing.T) {
	db, _ := testDB(t)
	repo := NewChatRepo(db)

	require.NoError(t, repo.Upsert(directory.Entry{ID: 20, Name: "Alice", Type: directory.Private}))
	require.NoError(t, repo.Upsert(directory.Entry{ID: 10, Name: "Team", Type: directory.Group}))
	require.NoError(t, repo.Upsert(directory.Entry{ID: 20, Name: "Alice W", Type: directory.Private}))

	entries, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, []directory.Entry{
		{ID: 10, Name: "Team", Type: directory.Group},
		{ID: 20, Name: "Alice W", Type: directory.Private},
	}, entries)

	removed, err := repo.Delete(10)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(10)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChatRepo_RejectsBadType(t *testing.T) {
	db, _ := testDB(t)
	err := NewChatRepo(db).Upsert(directory.Entry{ID: 1, Name: "x", Type: "channel"})
	assert.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	db, path := testDB(t)
	require.NoError(t, NewChatRepo(db).Upsert(directory.Entry{ID: 1033991906, Name: "Team", Type: directory.Group}))
	require.NoError(t, db.Close())

	entries, err := LoadDirectory(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	dir, err := directory.New(entries)
	require.NoError(t, err)
	id, ok := dir.IDByName("Team")
	assert.True(t, ok)
	assert.Equal(t, int64(1033991906), id)
}
