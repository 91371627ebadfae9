// Package store persists the fetched event list as one JSON array.
// Every update replaces the whole file.
package store

import (
	"duty-report/models"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoCache is returned by Load when no update has been run yet.
var ErrNoCache = errors.New("no cached events; run `duty-report update` first")

// Save writes events to path, replacing any previous cache.
//
// The file is written to a temp file in the same directory and renamed
// into place, so a reader never sees a half-written list.
func Save(path string, events []models.Event) error {
	if path == "" {
		return errors.New("cache path is empty")
	}
	if events == nil {
		events = []models.Event{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads the cached event list.
func Load(path string) ([]models.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoCache
		}
		return nil, err
	}

	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	return events, nil
}
