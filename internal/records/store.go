// Package records persists extracted vulnerability records between the extract
// and publish phases, and renders them for people.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zapissues/zapissues/internal/types"
)

// DefaultPath is where extraction writes its records
const DefaultPath = "vulnerabilities.json"

// ErrRecordsFileMissing is returned by Load when the file does not exist
var ErrRecordsFileMissing = errors.New("records file not found")

// Save writes records to path as an indented JSON array, creating parent directories
func Save(path string, records []types.VulnerabilityRecord) error {
	if records == nil {
		records = []types.VulnerabilityRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing records file: %w", err)
	}
	return nil
}

// Load reads a records file written by Save. Every record must be valid.
func Load(path string) ([]types.VulnerabilityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRecordsFileMissing, path)
		}
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	var records []types.VulnerabilityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records file %s: %w", path, err)
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i, path, err)
		}
		if records[i].URLs == nil {
			records[i].URLs = []string{}
		}
	}
	return records, nil
}
