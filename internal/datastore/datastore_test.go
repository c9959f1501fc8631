package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/errors"
)

// setupTestDB creates an in-memory SQLite store for testing
func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open(), "failed to open in-memory database")
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestDB(t)

	analysis := &Analysis{
		Date:       "2025-01-14",
		Type:       TypeSpecies,
		Species:    "Quercus robur",
		Confidence: ptr(0.91),
		Details: Details{Species: &SpeciesDetails{
			Characteristics: []string{"lobed leaves", "broad crown"},
			Algorithm:       "resnet",
		}},
	}

	id, err := store.Create(analysis)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Quercus robur", got.Species)
	assert.Equal(t, TypeSpecies, got.Type)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.91, *got.Confidence, 0.001)
	require.NotNil(t, got.Details.Species)
	assert.Equal(t, "resnet", got.Details.Species.Algorithm)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateIgnoresCallerID(t *testing.T) {
	store := setupTestDB(t)

	analysis := &Analysis{ID: 9999, Date: "2025-01-14", Type: TypeCount}
	id, err := store.Create(analysis)
	require.NoError(t, err)

	// Ids are store-assigned, caller-supplied ones are discarded.
	assert.NotEqual(t, uint(9999), id)
}

func TestGetNotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.Get(12345)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateMergePatch(t *testing.T) {
	store := setupTestDB(t)

	id, err := store.Create(&Analysis{
		Date:       "2025-01-14",
		Type:       TypeSpecies,
		Species:    "Quercus robur",
		Confidence: ptr(0.6),
	})
	require.NoError(t, err)

	updated, err := store.Update(id, &Patch{Confidence: ptr(0.95)})
	require.NoError(t, err)

	// Only the patched field changes.
	require.NotNil(t, updated.Confidence)
	assert.InDelta(t, 0.95, *updated.Confidence, 0.001)
	assert.Equal(t, "Quercus robur", updated.Species)
	assert.Equal(t, "2025-01-14", updated.Date)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = store.Update(54321, &Patch{Species: ptr("Fagus sylvatica")})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteToleratesAbsentID(t *testing.T) {
	store := setupTestDB(t)

	id, err := store.Create(&Analysis{Date: "2025-01-14", Type: TypePath})
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting an id that does not exist is not an error.
	assert.NoError(t, store.Delete(id))
}

func TestClearAndCount(t *testing.T) {
	store := setupTestDB(t)

	for _, date := range []string{"2025-01-13", "2025-01-14", "2025-01-15"} {
		_, err := store.Create(&Analysis{Date: date, Type: TypeGreenCover})
		require.NoError(t, err)
	}

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, store.Clear())

	count, err = store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetAllFilteredAndSorted(t *testing.T) {
	store := setupTestDB(t)

	records := []Analysis{
		{Date: "2025-01-13", Type: TypeSpecies, Species: "Quercus robur", Confidence: ptr(0.9)},
		{Date: "2025-01-15", Type: TypeSpecies, Species: "Fagus sylvatica", Confidence: ptr(0.5)},
		{Date: "2025-01-14", Type: TypePath, Confidence: ptr(0.7)},
	}
	for i := range records {
		_, err := store.Create(&records[i])
		require.NoError(t, err)
	}

	all, err := store.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-01-15", all[0].Date)
	assert.Equal(t, "2025-01-13", all[2].Date)

	filtered, err := store.GetAll(&Filter{Type: TypeSpecies, MinConfidence: ptr(0.8)})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Quercus robur", filtered[0].Species)
}

func TestSettingsUpsert(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.GetSetting("theme")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.SetSetting("theme", "dark"))
	require.NoError(t, store.SetSetting("theme", "light"))

	value, err := store.GetSetting("theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

func TestAppMetadataRoundTrip(t *testing.T) {
	store := setupTestDB(t)

	require.NoError(t, store.SetAppMetadata("schema_version", "3"))
	value, err := store.GetAppMetadata("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	_, err = store.GetAppMetadata("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewPrimarySelection(t *testing.T) {
	t.Parallel()

	sqliteSettings := &conf.Settings{}
	sqliteSettings.Output.SQLite.Enabled = true
	assert.IsType(t, &SQLiteStore{}, NewPrimary(sqliteSettings))

	mysqlSettings := &conf.Settings{}
	mysqlSettings.Output.MySQL.Enabled = true
	assert.IsType(t, &MySQLStore{}, NewPrimary(mysqlSettings))

	// No backend enabled means no primary store at all.
	assert.Nil(t, NewPrimary(&conf.Settings{}))
}

func TestSQLiteOpenRequiresPath(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true

	store := &SQLiteStore{Settings: settings}
	assert.Error(t, store.Open())
}
