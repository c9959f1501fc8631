package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecoview/ecoview-go/internal/conf"
)

// SQLiteStore implements the primary store over SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return validationError("SQLite database path is empty", "output.sqlite.path", "")
	}
	return nil
}

// Open sets up the SQLite database connection and creates or upgrades the
// schema.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err // validateSQLiteConfig returns a properly formatted error
	}

	path := store.Settings.Output.SQLite.Path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return openError(fmt.Errorf("creating database directory: %w", err), "SQLite")
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return openError(err, "SQLite")
	}

	store.DB = db

	if err := performAutoMigration(db, store.Settings.Debug, "SQLite", path); err != nil {
		return openError(err, "SQLite")
	}
	return nil
}

// StorageSize returns the database file size, 0 for in-memory databases.
func (store *SQLiteStore) StorageSize() (int64, error) {
	path := store.Settings.Output.SQLite.Path
	if path == ":memory:" {
		return 0, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		// Best effort only
		return 0, nil //nolint:nilerr // unobtainable size reports as 0
	}
	return info.Size(), nil
}
