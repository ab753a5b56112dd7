package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	sqlDB, err := Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func setupStateDB(t *testing.T) (*sql.DB, *ChatStateRepository) {
	t.Helper()
	sqlDB := openTestDB(t, "bot_state.db")
	if err := InitStateSchema(sqlDB); err != nil {
		t.Fatal(err)
	}
	queue := NewDBQueueForTest(sqlDB)
	t.Cleanup(queue.Close)
	return sqlDB, NewChatStateRepository(queue)
}

func setupLevelsDB(t *testing.T) (*sql.DB, *LevelRepository) {
	t.Helper()
	sqlDB := openTestDB(t, "levels.db")
	if err := InitLevelsSchema(sqlDB); err != nil {
		t.Fatal(err)
	}
	queue := NewDBQueueForTest(sqlDB)
	t.Cleanup(queue.Close)
	return sqlDB, NewLevelRepository(queue)
}
