package store_test

import (
	"os"
	"path/filepath"
	"testing"

	customerrors "duty-report/errors"
	"duty-report/models"
	"duty-report/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.json")
	events := []models.Event{
		models.NewEvent("Valvonta YK", "Yläkerta", 525, 540, "Maanantai", "Aalto Anna", "Berg Bo"),
		models.NewEvent("MAA5", "Matematiikka", 540, 615, "Tiistai", "", ""),
	}

	require.NoError(t, store.Save(path, events))

	got, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, events, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	first := []models.Event{models.NewEvent("Valvonta YK", "", 525, 540, "Maanantai", "A", "")}

	require.NoError(t, store.Save(path, first))
	require.NoError(t, store.Save(path, nil))

	got, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoad_Missing(t *testing.T) {
	_, err := store.Load(filepath.Join(t.TempDir(), "events.json"))
	assert.ErrorIs(t, err, store.ErrNoCache)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Start": 525}]`), 0o600))

	_, err := store.Load(path)
	assert.ErrorIs(t, err, customerrors.ErrMissingField)
}
