package learner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Save writes the flattened table as JSON to a temporary file in the same
// directory and renames it over path, so readers never see a partial file.
func (t *Table) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create table directory: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary table file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if err := json.NewEncoder(f).Encode(t.values); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("failed to set table file mode: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync table file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move table into place: %w", err)
	}
	return nil
}

// LoadTable reads a table written by Save. It never fails: a missing or
// malformed file yields an empty table and a log line.
func LoadTable(path string) *Table {
	values, err := readValues(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", path).Msg("no table file found, starting empty")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("unreadable table file, starting empty")
		}
		return NewTable()
	}
	return &Table{values: values}
}

func readValues(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	if values == nil { // file contained "null"
		values = make(map[string]float64)
	}
	return values, nil
}
