package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus-crane/dronemap/models"
)

// FileStore persists the media collection as a pretty printed JSON array.
// Every save rewrites the whole file, there is no incremental append.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted collection. A missing or unreadable file falls
// back to the seed collection rather than surfacing an error.
func (s *FileStore) Load() []models.MediaRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.With(slog.String("path", s.path)).Info("No data file found, using seed data")
		} else {
			slog.With(slog.String("path", s.path), slog.String("error", err.Error())).Warn("Failed to read data file, using seed data")
		}
		return Seed()
	}
	var records []models.MediaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.With(slog.String("path", s.path), slog.String("error", err.Error())).Warn("Data file is malformed, using seed data")
		return Seed()
	}
	if records == nil {
		// A literal null document is as good as corrupt
		slog.With(slog.String("path", s.path)).Warn("Data file holds no collection, using seed data")
		return Seed()
	}
	return records
}

// Save replaces the backing file with the full collection. The data is
// written to a sibling temp file first and renamed into place.
func (s *FileStore) Save(records []models.MediaRecord) error {
	if records == nil {
		records = []models.MediaRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode media data: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write media data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush media data: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on media data: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace media data: %w", err)
	}
	return nil
}

// Append assigns the next id to record, adds it to records and persists the
// result. When the save fails the original collection is handed back untouched.
func (s *FileStore) Append(records []models.MediaRecord, record models.MediaRecord) ([]models.MediaRecord, error) {
	record.ID = NextID(records)
	updated := make([]models.MediaRecord, 0, len(records)+1)
	updated = append(updated, records...)
	updated = append(updated, record)
	if err := s.Save(updated); err != nil {
		return records, err
	}
	return updated, nil
}

// NextID is one more than the largest id in use, or 1 for an empty collection
func NextID(records []models.MediaRecord) int {
	max := 0
	for _, r := range records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}
