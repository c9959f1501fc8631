// bolt.go implements the fallback store: a Bolt key-value file where the
// whole analysis collection lives under one well-known key as a JSON array.
// Every mutation reads the full array, changes it in memory and writes it
// back whole; concurrent writers are not coordinated and the last writer
// wins.
package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/ecoview/ecoview-go/internal/conf"
)

// Bucket and key layout of the fallback store file.
var (
	analysesBucket = []byte("analyses")
	settingsBucket = []byte("settings")
	metadataBucket = []byte("app_metadata")
	analysesKey    = []byte("records")
)

// BoltStore implements Interface over a single Bolt database file.
type BoltStore struct {
	Settings *conf.Settings
	db       *bolt.DB
}

// Open opens the Bolt file and ensures the bucket layout exists. Any failure
// surfaces as corrupt state: there is no further fallback tier behind this
// store.
func (store *BoltStore) Open() error {
	path := store.Settings.Output.Bolt.Path
	if path == "" {
		return validationError("fallback store path is empty", "output.bolt.path", "")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return corruptError(fmt.Errorf("creating fallback store directory: %w", err), "open")
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return corruptError(fmt.Errorf("opening fallback store: %w", err), "open")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{analysesBucket, settingsBucket, metadataBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return corruptError(err, "open")
	}

	store.db = db
	return nil
}

// Close closes the Bolt file.
func (store *BoltStore) Close() error {
	if store.db == nil {
		return nil
	}
	return store.db.Close()
}

// readAll loads and parses the whole record collection.
func (store *BoltStore) readAll() ([]Analysis, error) {
	if store.db == nil {
		return nil, corruptError(fmt.Errorf("fallback store is not open"), "read")
	}

	var analyses []Analysis
	err := store.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(analysesBucket)
		if bucket == nil {
			return nil
		}
		data := bucket.Get(analysesKey)
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, &analyses); err != nil {
			return fmt.Errorf("parsing stored payload: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, corruptError(err, "read")
	}
	return analyses, nil
}

// writeAll serializes and stores the whole record collection.
func (store *BoltStore) writeAll(analyses []Analysis) error {
	if store.db == nil {
		return corruptError(fmt.Errorf("fallback store is not open"), "write")
	}

	data, err := json.Marshal(analyses)
	if err != nil {
		return corruptError(fmt.Errorf("serializing payload: %w", err), "write")
	}

	err = store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(analysesBucket).Put(analysesKey, data)
	})
	if err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "write_all", "")
	}
	return nil
}

// Create appends the analysis to the collection. Ids are the creation time
// in milliseconds: two creates within the same millisecond collide, and the
// later record shadows the earlier one on id-keyed operations. A known
// weakness of this store, kept as is.
func (store *BoltStore) Create(analysis *Analysis) (uint, error) {
	analyses, err := store.readAll()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	analysis.ID = uint(now.UnixMilli())
	analysis.CreatedAt = now
	analysis.UpdatedAt = now

	analyses = append(analyses, *analysis)
	if err := store.writeAll(analyses); err != nil {
		return 0, err
	}
	return analysis.ID, nil
}

// Get retrieves an analysis by its id.
func (store *BoltStore) Get(id uint) (Analysis, error) {
	analyses, err := store.readAll()
	if err != nil {
		return Analysis{}, err
	}
	for i := range analyses {
		if analyses[i].ID == id {
			return analyses[i], nil
		}
	}
	return Analysis{}, notFoundError(id)
}

// GetAll retrieves every analysis, filtered and sorted newest-first by date.
func (store *BoltStore) GetAll(filter *Filter) ([]Analysis, error) {
	analyses, err := store.readAll()
	if err != nil {
		return nil, err
	}
	analyses = ApplyFilter(analyses, filter)
	SortByDateDesc(analyses)
	return analyses, nil
}

// Update merges the patch onto the stored analysis and writes the collection
// back.
func (store *BoltStore) Update(id uint, patch *Patch) (Analysis, error) {
	analyses, err := store.readAll()
	if err != nil {
		return Analysis{}, err
	}

	for i := range analyses {
		if analyses[i].ID != id {
			continue
		}
		patch.apply(&analyses[i])
		analyses[i].UpdatedAt = time.Now()
		if err := store.writeAll(analyses); err != nil {
			return Analysis{}, err
		}
		return analyses[i], nil
	}
	return Analysis{}, notFoundError(id)
}

// Delete removes the analysis with the given id. Absent ids are not an error.
func (store *BoltStore) Delete(id uint) error {
	analyses, err := store.readAll()
	if err != nil {
		return err
	}

	kept := analyses[:0]
	for i := range analyses {
		if analyses[i].ID != id {
			kept = append(kept, analyses[i])
		}
	}
	return store.writeAll(kept)
}

// Clear removes every analysis record.
func (store *BoltStore) Clear() error {
	return store.writeAll(nil)
}

// GetAnalytics derives the analytics summary from the filtered, sorted set.
func (store *BoltStore) GetAnalytics(filter *Filter) (Summary, error) {
	analyses, err := store.GetAll(filter)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(analyses), nil
}

// Count returns the total number of analysis records.
func (store *BoltStore) Count() (int64, error) {
	analyses, err := store.readAll()
	if err != nil {
		return 0, err
	}
	return int64(len(analyses)), nil
}

// StorageSize returns the size of the stored payload blob in bytes.
func (store *BoltStore) StorageSize() (int64, error) {
	if store.db == nil {
		return 0, nil
	}
	var size int64
	err := store.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(analysesBucket); bucket != nil {
			size = int64(len(bucket.Get(analysesKey)))
		}
		return nil
	})
	if err != nil {
		return 0, nil //nolint:nilerr // best-effort estimate
	}
	return size, nil
}

// GetSetting returns the value stored under key in the settings bucket.
func (store *BoltStore) GetSetting(key string) (string, error) {
	return store.getKV(settingsBucket, "settings", key)
}

// SetSetting stores value under key in the settings bucket.
func (store *BoltStore) SetSetting(key, value string) error {
	return store.putKV(settingsBucket, key, value)
}

// GetAppMetadata returns the value stored under key in the metadata bucket.
func (store *BoltStore) GetAppMetadata(key string) (string, error) {
	return store.getKV(metadataBucket, "app_metadata", key)
}

// SetAppMetadata stores value under key in the metadata bucket.
func (store *BoltStore) SetAppMetadata(key, value string) error {
	return store.putKV(metadataBucket, key, value)
}

func (store *BoltStore) getKV(bucket []byte, table, key string) (string, error) {
	if store.db == nil {
		return "", corruptError(fmt.Errorf("fallback store is not open"), "read")
	}

	var value []byte
	err := store.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			value = b.Get([]byte(key))
		}
		return nil
	})
	if err != nil {
		return "", corruptError(err, "read")
	}
	if value == nil {
		return "", keyNotFoundError(table, key)
	}
	return string(value), nil
}

func (store *BoltStore) putKV(bucket []byte, key, value string) error {
	if store.db == nil {
		return corruptError(fmt.Errorf("fallback store is not open"), "write")
	}

	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return dbError(fmt.Errorf("%w: %w", ErrWrite, err), "put_kv", "", "key", key)
	}
	return nil
}
