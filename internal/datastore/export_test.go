package datastore

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/errors"
)

// setupFacade creates an initialized facade over an in-memory primary store
func setupFacade(t *testing.T) *Store {
	t.Helper()

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
	return store
}

func TestExportImportJSONRoundTrip(t *testing.T) {
	store := setupFacade(t)

	_, err := store.Create(&Analysis{
		Date:       "2025-01-14",
		Type:       TypeSpecies,
		Species:    "Quercus robur",
		Confidence: ptr(0.91),
		Details:    Details{Species: &SpeciesDetails{Algorithm: "resnet"}},
	})
	require.NoError(t, err)
	_, err = store.Create(&Analysis{
		Date:    "2025-01-15",
		Type:    TypeCount,
		Details: Details{Count: &TreeCountDetails{TreeCount: 14}},
	})
	require.NoError(t, err)

	payload, err := store.ExportData(FormatJSON)
	require.NoError(t, err)

	var exported []Analysis
	require.NoError(t, json.Unmarshal(payload, &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "2025-01-15", exported[0].Date, "export is newest first")

	require.NoError(t, store.Clear())

	count, err := store.ImportData(payload, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	restored, err := store.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, "Quercus robur", restored[1].Species)
	require.NotNil(t, restored[0].Details.Count)
	assert.Equal(t, 14, restored[0].Details.Count.TreeCount)
}

func TestExportCSVShape(t *testing.T) {
	store := setupFacade(t)

	_, err := store.Create(&Analysis{
		Date:    "2025-01-14",
		Type:    TypeGreenCover,
		Details: Details{GreenCover: &GreenCoverDetails{GreenCover: 47.5}},
	})
	require.NoError(t, err)

	payload, err := store.ExportData(FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, csvHeader, lines[0])

	cells := strings.Split(lines[1], ",")
	require.Len(t, cells, 8)
	assert.Equal(t, "2025-01-14", cells[1])
	assert.Equal(t, TypeGreenCover, cells[2])
	// Missing optional fields render as empty cells.
	assert.Empty(t, cells[3], "species cell")
	assert.Empty(t, cells[4], "confidence cell")
	assert.Equal(t, "47.5", cells[5])
	assert.Empty(t, cells[6], "tree count cell")
	assert.NotEmpty(t, cells[7], "created at cell")
}

func TestImportCSV(t *testing.T) {
	store := setupFacade(t)

	payload := strings.Join([]string{
		" ID , Date ,Type,Species,Confidence,GreenCover,TreeCount,CreatedAt",
		"1,2025-01-13,species,Quercus robur,0.88,,,2025-01-13T08:00:00Z",
		"2,2025-01-14,greencover,,,52.1,,2025-01-14T08:00:00Z",
		"3,2025-01-15,count,,,,21,2025-01-15T08:00:00Z",
		"",
	}, "\n")

	count, err := store.ImportData([]byte(payload), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	restored, err := store.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, restored, 3)

	assert.Equal(t, TypeCount, restored[0].Type)
	n, ok := restored[0].Details.TreeCountValue()
	assert.True(t, ok)
	assert.Equal(t, 21, n)

	v, ok := restored[1].Details.GreenCoverValue()
	assert.True(t, ok)
	assert.InDelta(t, 52.1, v, 0.001)

	assert.Equal(t, "Quercus robur", restored[2].Species)
	require.NotNil(t, restored[2].Confidence)
	assert.InDelta(t, 0.88, *restored[2].Confidence, 0.001)
}

func TestImportCSVDropsUnparsableRows(t *testing.T) {
	store := setupFacade(t)

	payload := strings.Join([]string{
		csvHeader,
		"1,2025-01-13,species,Quercus robur,not-a-number,,,",
		"2,2025-01-14,species,Fagus sylvatica,0.7,,,",
	}, "\n")

	count, err := store.ImportData([]byte(payload), FormatCSV)
	require.NoError(t, err)
	// The count covers parsed rows only, the bad row is logged and dropped.
	assert.Equal(t, 1, count)

	restored, err := store.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "Fagus sylvatica", restored[0].Species)
}

func TestImportCountsParsedNotPersisted(t *testing.T) {
	primary := newStubStore()
	fallback := newStubStore()
	store := NewStoreWith(primary, fallback)
	require.NoError(t, store.Initialize())

	primary.callErr = dbError(errors.NewStd("injected create failure"), "create", "")
	fallback.callErr = primary.callErr

	payload := `[{"date":"2025-01-14","type":"species","species":"Quercus robur"}]`
	count, err := store.ImportData([]byte(payload), FormatJSON)

	// Create failures are swallowed per record: the batch succeeds and the
	// count reports what parsed, not what persisted.
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Zero(t, primary.creates)
	assert.Zero(t, fallback.creates)
}

func TestImportResetsIdentityFields(t *testing.T) {
	store := setupFacade(t)

	payload := `[{"id":424242,"date":"2025-01-14","type":"path","createdAt":"2020-01-01T00:00:00Z"}]`
	count, err := store.ImportData([]byte(payload), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := store.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.NotEqual(t, uint(424242), restored[0].ID)
	assert.NotEqual(t, 2020, restored[0].CreatedAt.Year())
}

func TestUnsupportedFormat(t *testing.T) {
	store := setupFacade(t)

	_, err := store.ExportData("xml")
	assert.Error(t, err)

	_, err = store.ImportData([]byte("<analyses/>"), "xml")
	assert.Error(t, err)
}
