package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/errors"
)

// stubStore is a minimal in-memory Interface implementation with error
// injection, used to drive the facade through its fallback paths.
type stubStore struct {
	openErr  error
	callErr  error
	analyses []Analysis
	nextID   uint
	settings map[string]string
	metadata map[string]string
	creates  int
}

func newStubStore() *stubStore {
	return &stubStore{
		nextID:   1,
		settings: make(map[string]string),
		metadata: make(map[string]string),
	}
}

func (s *stubStore) Open() error  { return s.openErr }
func (s *stubStore) Close() error { return nil }

func (s *stubStore) Create(analysis *Analysis) (uint, error) {
	if s.callErr != nil {
		return 0, s.callErr
	}
	s.creates++
	analysis.ID = s.nextID
	s.nextID++
	s.analyses = append(s.analyses, *analysis)
	return analysis.ID, nil
}

func (s *stubStore) Get(id uint) (Analysis, error) {
	if s.callErr != nil {
		return Analysis{}, s.callErr
	}
	for i := range s.analyses {
		if s.analyses[i].ID == id {
			return s.analyses[i], nil
		}
	}
	return Analysis{}, notFoundError(id)
}

func (s *stubStore) GetAll(filter *Filter) ([]Analysis, error) {
	if s.callErr != nil {
		return nil, s.callErr
	}
	analyses := ApplyFilter(s.analyses, filter)
	SortByDateDesc(analyses)
	return analyses, nil
}

func (s *stubStore) Update(id uint, patch *Patch) (Analysis, error) {
	if s.callErr != nil {
		return Analysis{}, s.callErr
	}
	for i := range s.analyses {
		if s.analyses[i].ID == id {
			patch.apply(&s.analyses[i])
			return s.analyses[i], nil
		}
	}
	return Analysis{}, notFoundError(id)
}

func (s *stubStore) Delete(id uint) error {
	if s.callErr != nil {
		return s.callErr
	}
	kept := s.analyses[:0]
	for i := range s.analyses {
		if s.analyses[i].ID != id {
			kept = append(kept, s.analyses[i])
		}
	}
	s.analyses = kept
	return nil
}

func (s *stubStore) Clear() error {
	if s.callErr != nil {
		return s.callErr
	}
	s.analyses = nil
	return nil
}

func (s *stubStore) GetAnalytics(filter *Filter) (Summary, error) {
	if s.callErr != nil {
		return Summary{}, s.callErr
	}
	analyses, _ := s.GetAll(filter)
	return Summarize(analyses), nil
}

func (s *stubStore) Count() (int64, error) {
	if s.callErr != nil {
		return 0, s.callErr
	}
	return int64(len(s.analyses)), nil
}

func (s *stubStore) StorageSize() (int64, error) { return 0, s.callErr }

func (s *stubStore) GetSetting(key string) (string, error) {
	if s.callErr != nil {
		return "", s.callErr
	}
	value, ok := s.settings[key]
	if !ok {
		return "", keyNotFoundError("settings", key)
	}
	return value, nil
}

func (s *stubStore) SetSetting(key, value string) error {
	if s.callErr != nil {
		return s.callErr
	}
	s.settings[key] = value
	return nil
}

func (s *stubStore) GetAppMetadata(key string) (string, error) {
	if s.callErr != nil {
		return "", s.callErr
	}
	value, ok := s.metadata[key]
	if !ok {
		return "", keyNotFoundError("app_metadata", key)
	}
	return value, nil
}

func (s *stubStore) SetAppMetadata(key, value string) error {
	if s.callErr != nil {
		return s.callErr
	}
	s.metadata[key] = value
	return nil
}

func TestInitializePrimaryMode(t *testing.T) {
	store := NewStoreWith(newStubStore(), newStubStore())

	require.NoError(t, store.Initialize())
	assert.Equal(t, ModePrimary, store.Mode())
}

func TestInitializeWithoutPrimaryFallsBack(t *testing.T) {
	store := NewStoreWith(nil, newStubStore())

	require.NoError(t, store.Initialize())
	assert.Equal(t, ModeFallback, store.Mode())

	// Operations still work, routed at the fallback store.
	id, err := store.Create(&Analysis{Date: "2025-01-14", Type: TypeSpecies})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestInitializePrimaryOpenFailureFallsBack(t *testing.T) {
	primary := newStubStore()
	primary.openErr = openError(errors.NewStd("database is locked"), "SQLite")
	fallback := newStubStore()

	store := NewStoreWith(primary, fallback)
	require.NoError(t, store.Initialize())

	// The session parks on the fallback store for its whole lifetime.
	assert.Equal(t, ModeFallback, store.Mode())

	_, err := store.Create(&Analysis{Date: "2025-01-14", Type: TypeCount})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.creates)
	assert.Zero(t, primary.creates)
}

func TestInitializeFallbackOpenFailurePropagates(t *testing.T) {
	fallback := newStubStore()
	fallback.openErr = corruptError(errors.NewStd("file truncated"), "open")

	store := NewStoreWith(newStubStore(), fallback)
	err := store.Initialize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptState))
}

func TestPerCallFallbackKeepsPrimaryMode(t *testing.T) {
	primary := newStubStore()
	fallback := newStubStore()
	store := NewStoreWith(primary, fallback)
	require.NoError(t, store.Initialize())

	primary.callErr = dbError(errors.NewStd("disk I/O error"), "create", errors.PriorityHigh)

	id, err := store.Create(&Analysis{Date: "2025-01-14", Type: TypePath})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, fallback.creates)

	// A failed call reroutes once but never flips the session mode.
	assert.Equal(t, ModePrimary, store.Mode())

	// Once the primary store recovers, calls route there again.
	primary.callErr = nil
	_, err = store.Create(&Analysis{Date: "2025-01-15", Type: TypePath})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.creates)
	assert.Equal(t, 1, fallback.creates)
}

func TestPerCallFallbackAppliesToNotFound(t *testing.T) {
	primary := newStubStore()
	fallback := newStubStore()
	store := NewStoreWith(primary, fallback)
	require.NoError(t, store.Initialize())

	// Seed only the fallback store.
	seeded := Analysis{Date: "2025-01-14", Type: TypeSpecies, Species: "Quercus robur"}
	id, err := fallback.Create(&seeded)
	require.NoError(t, err)

	// The retry is indiscriminate: a primary miss reroutes the lookup, so a
	// record only the fallback store holds is still found.
	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Quercus robur", got.Species)
}

func TestFallbackModeFailuresSurface(t *testing.T) {
	fallback := newStubStore()
	store := NewStoreWith(nil, fallback)
	require.NoError(t, store.Initialize())

	fallback.callErr = corruptError(errors.NewStd("payload unreadable"), "read")

	// In fallback mode there is no further tier, the error surfaces as is.
	_, err := store.GetAll(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptState))
}

func TestStoreEndToEndWithRealAdapters(t *testing.T) {
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"
	settings.Output.Bolt.Path = filepath.Join(t.TempDir(), "fallback.db")

	store := NewStore(settings)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	assert.Equal(t, ModePrimary, store.Mode())

	id, err := store.Create(&Analysis{
		Date:       "2025-01-14",
		Type:       TypeGreenCover,
		Confidence: ptr(0.77),
		Details:    Details{GreenCover: &GreenCoverDetails{GreenCover: 51.0, IdleLand: 8.5}},
	})
	require.NoError(t, err)

	got, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, got.Details.GreenCover)
	assert.InDelta(t, 51.0, got.Details.GreenCover.GreenCover, 0.001)

	require.NoError(t, store.SetSetting("units", "metric"))
	value, err := store.GetSetting("units")
	require.NoError(t, err)
	assert.Equal(t, "metric", value)
}
