package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ecoview/ecoview-go/internal/conf"
)

// MySQLStore implements the primary store over MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	cfg := settings.Output.MySQL
	if cfg.Host == "" || cfg.Database == "" {
		return validationError("MySQL host and database must be set", "output.mysql", fmt.Sprintf("%s/%s", cfg.Host, cfg.Database))
	}
	return nil
}

// Open sets up the MySQL database connection and creates or upgrades the
// schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	cfg := store.Settings.Output.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return openError(err, "MySQL")
	}

	store.DB = db

	connectionInfo := fmt.Sprintf("%s@%s:%s/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)
	if err := performAutoMigration(db, store.Settings.Debug, "MySQL", connectionInfo); err != nil {
		return openError(err, "MySQL")
	}
	return nil
}
