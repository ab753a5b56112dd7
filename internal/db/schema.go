package db

import (
	"database/sql"
	"fmt"
)

const levelsSchema = `
CREATE TABLE IF NOT EXISTS levels (
    level INTEGER PRIMARY KEY,
    main_words TEXT NOT NULL,
    bonus_words TEXT
);
`

const stateSchema = `
CREATE TABLE IF NOT EXISTS message_state (
    chat_id INTEGER PRIMARY KEY,
    user_msg_id INTEGER,
    bot_msg_id INTEGER
);
`

// Open opens a sqlite database file with the pragmas used by both stores.
func Open(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return sqlDB, nil
}

// InitLevelsSchema is only needed by the importer; the bot expects a populated file.
func InitLevelsSchema(db *sql.DB) error {
	if _, err := db.Exec(levelsSchema); err != nil {
		return fmt.Errorf("create levels table: %w", err)
	}
	return nil
}

func InitStateSchema(db *sql.DB) error {
	if _, err := db.Exec(stateSchema); err != nil {
		return fmt.Errorf("create message_state table: %w", err)
	}
	return nil
}
