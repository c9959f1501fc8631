// store.go implements the unified store facade. Routing follows a two-tier
// fallback policy:
//
//   - session level: Initialize tries the primary adapter once; any open
//     failure parks the whole session on the fallback adapter, with no
//     automatic retry.
//   - per call: while the session runs on the primary adapter, a single
//     failed call is retried once against the fallback adapter without
//     changing the session mode.
//
// The two tiers are independent, so a transient primary write failure does
// not strand the session in fallback mode.
package datastore

import (
	"github.com/ecoview/ecoview-go/internal/conf"
)

// Mode identifies which adapter the session routes operations to.
type Mode int

const (
	ModePrimary Mode = iota
	ModeFallback
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeFallback {
		return "fallback"
	}
	return "primary"
}

// Store is the unified entry point used by every consumer. Construct one
// handle at process start and pass it along; there is no package-level
// instance.
type Store struct {
	primary  Interface
	fallback Interface
	mode     Mode
}

// NewStore builds the facade from settings. Nothing is opened until
// Initialize is called.
func NewStore(settings *conf.Settings) *Store {
	return &Store{
		primary:  NewPrimary(settings),
		fallback: &BoltStore{Settings: settings},
	}
}

// NewStoreWith builds the facade over explicit adapters.
func NewStoreWith(primary, fallback Interface) *Store {
	return &Store{
		primary:  primary,
		fallback: fallback,
	}
}

// Initialize opens the adapters and decides the session mode. A primary open
// failure of any kind switches the session to fallback mode permanently; the
// decision is only re-evaluated by calling Initialize again. A fallback open
// failure propagates, since there is no further tier.
func (s *Store) Initialize() error {
	if err := s.fallback.Open(); err != nil {
		return err
	}

	if s.primary == nil {
		getLogger().Warn("no primary store backend enabled, session runs on fallback store",
			"error", ErrUnsupportedEnvironment)
		s.mode = ModeFallback
		return nil
	}

	if err := s.primary.Open(); err != nil {
		getLogger().Warn("primary store unavailable, session switched to fallback store",
			"error", err)
		_ = s.primary.Close()
		s.primary = nil
		s.mode = ModeFallback
		return nil
	}

	s.mode = ModePrimary
	return nil
}

// Mode returns the current session routing mode.
func (s *Store) Mode() Mode {
	return s.mode
}

// Close closes both adapters.
func (s *Store) Close() error {
	var firstErr error
	if s.primary != nil {
		firstErr = s.primary.Close()
	}
	if s.fallback != nil {
		if err := s.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// callStore routes one operation per the session mode, with the one-shot
// per-call fallback retry. The retry is deliberately indiscriminate: any
// primary failure, NotFound included, reroutes to the fallback store once.
func callStore[T any](s *Store, op string, fn func(Interface) (T, error)) (T, error) {
	if s.mode == ModeFallback || s.primary == nil {
		return fn(s.fallback)
	}

	value, err := fn(s.primary)
	if err == nil {
		return value, nil
	}

	getLogger().Warn("primary store call failed, retrying once on fallback store",
		"operation", op,
		"error", err)
	return fn(s.fallback)
}

// Create persists a new analysis and returns its id.
func (s *Store) Create(analysis *Analysis) (uint, error) {
	return callStore(s, "create", func(st Interface) (uint, error) {
		return st.Create(analysis)
	})
}

// Get retrieves an analysis by id.
func (s *Store) Get(id uint) (Analysis, error) {
	return callStore(s, "get", func(st Interface) (Analysis, error) {
		return st.Get(id)
	})
}

// GetAll retrieves the filtered history, newest first.
func (s *Store) GetAll(filter *Filter) ([]Analysis, error) {
	return callStore(s, "get_all", func(st Interface) ([]Analysis, error) {
		return st.GetAll(filter)
	})
}

// Update merge-patches an analysis and returns the merged record.
func (s *Store) Update(id uint, patch *Patch) (Analysis, error) {
	return callStore(s, "update", func(st Interface) (Analysis, error) {
		return st.Update(id, patch)
	})
}

// Delete removes an analysis by id.
func (s *Store) Delete(id uint) error {
	_, err := callStore(s, "delete", func(st Interface) (struct{}, error) {
		return struct{}{}, st.Delete(id)
	})
	return err
}

// Clear removes every analysis record.
func (s *Store) Clear() error {
	_, err := callStore(s, "clear", func(st Interface) (struct{}, error) {
		return struct{}{}, st.Clear()
	})
	return err
}

// GetAnalytics returns aggregate statistics over the filtered history.
func (s *Store) GetAnalytics(filter *Filter) (Summary, error) {
	return callStore(s, "get_analytics", func(st Interface) (Summary, error) {
		return st.GetAnalytics(filter)
	})
}

// Count returns the total number of stored analyses.
func (s *Store) Count() (int64, error) {
	return callStore(s, "count", func(st Interface) (int64, error) {
		return st.Count()
	})
}

// StorageSize returns a best-effort storage usage estimate in bytes.
func (s *Store) StorageSize() (int64, error) {
	return callStore(s, "storage_size", func(st Interface) (int64, error) {
		return st.StorageSize()
	})
}

// GetSetting reads a value from the settings table.
func (s *Store) GetSetting(key string) (string, error) {
	return callStore(s, "get_setting", func(st Interface) (string, error) {
		return st.GetSetting(key)
	})
}

// SetSetting writes a value to the settings table.
func (s *Store) SetSetting(key, value string) error {
	_, err := callStore(s, "set_setting", func(st Interface) (struct{}, error) {
		return struct{}{}, st.SetSetting(key, value)
	})
	return err
}

// GetAppMetadata reads a value from the application metadata table.
func (s *Store) GetAppMetadata(key string) (string, error) {
	return callStore(s, "get_app_metadata", func(st Interface) (string, error) {
		return st.GetAppMetadata(key)
	})
}

// SetAppMetadata writes a value to the application metadata table.
func (s *Store) SetAppMetadata(key, value string) error {
	_, err := callStore(s, "set_app_metadata", func(st Interface) (struct{}, error) {
		return struct{}{}, st.SetAppMetadata(key, value)
	})
	return err
}
