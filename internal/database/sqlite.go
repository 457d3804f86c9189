package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a file-backed SQLite database. Used for local
// development when no postgres DSN is configured, and by tests.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "choreboard.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}
