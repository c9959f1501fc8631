// interfaces.go: this code defines the interface for the store operations
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/errors"
)

// Sentinel errors forming the store error taxonomy. They are wrapped with
// component and category context on every return path and matched with
// errors.Is.
var (
	// ErrUnsupportedEnvironment signals that no primary store backend is
	// enabled in the configuration.
	ErrUnsupportedEnvironment = errors.NewStd("no supported store backend available")
	// ErrOpen signals that the open or migration handshake failed.
	ErrOpen = errors.NewStd("failed to open store")
	// ErrBlocked signals that an open or schema upgrade was blocked by a
	// concurrent connection holding the database.
	ErrBlocked = errors.NewStd("store open blocked by another connection")
	// ErrNotFound signals an absent record on point lookups and updates.
	ErrNotFound = errors.NewStd("record not found")
	// ErrWrite signals a mutation rejected by the underlying store.
	ErrWrite = errors.NewStd("write rejected by store")
	// ErrCorruptState signals that the fallback store is unavailable or its
	// stored payload does not parse.
	ErrCorruptState = errors.NewStd("fallback store state unreadable")
)

// Interface defines the operations shared by the primary and fallback store
// adapters.
type Interface interface {
	Open() error
	Close() error
	Create(analysis *Analysis) (uint, error)
	Get(id uint) (Analysis, error)
	GetAll(filter *Filter) ([]Analysis, error)
	Update(id uint, patch *Patch) (Analysis, error)
	Delete(id uint) error
	Clear() error
	GetAnalytics(filter *Filter) (Summary, error)
	Count() (int64, error)
	StorageSize() (int64, error)
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetAppMetadata(key string) (string, error)
	SetAppMetadata(key, value string) error
}

// NewPrimary returns the configured primary store adapter, or nil when no
// primary backend is enabled.
func NewPrimary(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// DataStore implements the GORM-backed part of Interface shared by the
// SQLite and MySQL primary stores.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// Create stamps the audit timestamps, persists the analysis and returns the
// store-assigned id.
func (ds *DataStore) Create(analysis *Analysis) (uint, error) {
	now := time.Now()
	analysis.ID = 0 // the database assigns the key
	analysis.CreatedAt = now
	analysis.UpdatedAt = now

	if err := ds.DB.Create(analysis).Error; err != nil {
		return 0, dbError(fmt.Errorf("%w: %w", ErrWrite, err), "create", errors.PriorityHigh,
			"analysis_type", analysis.Type)
	}
	return analysis.ID, nil
}

// Get retrieves an analysis by its id.
func (ds *DataStore) Get(id uint) (Analysis, error) {
	var analysis Analysis
	if err := ds.DB.First(&analysis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Analysis{}, notFoundError(id)
		}
		return Analysis{}, dbError(err, "get", "", "record_id", id)
	}
	return analysis, nil
}

// GetAll retrieves every analysis, applies the filter and sorts the result
// newest-first by date. Filtering and sorting are applied eagerly over the
// full set; the corpus is small.
func (ds *DataStore) GetAll(filter *Filter) ([]Analysis, error) {
	var analyses []Analysis
	if result := ds.DB.Find(&analyses); result.Error != nil {
		return nil, dbError(result.Error, "get_all", "")
	}
	analyses = ApplyFilter(analyses, filter)
	SortByDateDesc(analyses)
	return analyses, nil
}

// Update merges the patch onto the stored analysis, refreshes updatedAt and
// persists the merged record. The creation timestamp is never touched.
func (ds *DataStore) Update(id uint, patch *Patch) (Analysis, error) {
	analysis, err := ds.Get(id)
	if err != nil {
		return Analysis{}, err
	}

	patch.apply(&analysis)
	analysis.UpdatedAt = time.Now()

	if err := ds.DB.Save(&analysis).Error; err != nil {
		return Analysis{}, dbError(fmt.Errorf("%w: %w", ErrWrite, err), "update", errors.PriorityHigh,
			"record_id", id)
	}
	return analysis, nil
}

// Delete removes an analysis. Deleting an absent id is not an error.
func (ds *DataStore) Delete(id uint) error {
	if err := ds.DB.Delete(&Analysis{}, id).Error; err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "delete", "", "record_id", id)
	}
	return nil
}

// Clear removes every analysis record.
func (ds *DataStore) Clear() error {
	if err := ds.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Analysis{}).Error; err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "clear", errors.PriorityHigh)
	}
	return nil
}

// GetAnalytics derives the analytics summary from the filtered, sorted set.
func (ds *DataStore) GetAnalytics(filter *Filter) (Summary, error) {
	analyses, err := ds.GetAll(filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(analyses), nil
}

// Count returns the total number of analysis records.
func (ds *DataStore) Count() (int64, error) {
	var count int64
	if err := ds.DB.Model(&Analysis{}).Count(&count).Error; err != nil {
		return 0, dbError(err, "count", "")
	}
	return count, nil
}

// StorageSize returns a best-effort storage usage estimate in bytes. The
// base implementation cannot report one and returns 0; backends that can
// override it.
func (ds *DataStore) StorageSize() (int64, error) {
	return 0, nil
}

// GetSetting returns the value stored under key in the settings table.
func (ds *DataStore) GetSetting(key string) (string, error) {
	var setting Setting
	if err := ds.DB.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", keyNotFoundError("settings", key)
		}
		return "", dbError(err, "get_setting", "", "key", key)
	}
	return setting.Value, nil
}

// SetSetting stores value under key in the settings table.
func (ds *DataStore) SetSetting(key, value string) error {
	setting := Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := ds.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error; err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "set_setting", "", "key", key)
	}
	return nil
}

// GetAppMetadata returns the value stored under key in the metadata table.
func (ds *DataStore) GetAppMetadata(key string) (string, error) {
	var meta AppMetadata
	if err := ds.DB.First(&meta, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", keyNotFoundError("app_metadata", key)
		}
		return "", dbError(err, "get_app_metadata", "", "key", key)
	}
	return meta.Value, nil
}

// SetAppMetadata stores value under key in the metadata table.
func (ds *DataStore) SetAppMetadata(key, value string) error {
	meta := AppMetadata{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := ds.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&meta).Error; err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "set_app_metadata", "", "key", key)
	}
	return nil
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", "")
	}
	return sqlDB.Close()
}

// performAutoMigration creates or upgrades the schema for all store tables.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Analysis{}, &Setting{}, &AppMetadata{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		getLogger().Debug("database connection initialized",
			"db_type", dbType,
			"connection", connectionInfo)
	}

	return nil
}
