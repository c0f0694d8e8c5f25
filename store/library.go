package store

import (
	"sync"

	"github.com/marcus-crane/dronemap/models"
)

type Stats struct {
	Total  int `json:"total"`
	Photos int `json:"photos"`
	Videos int `json:"videos"`
}

// Library holds the in-memory collection for the lifetime of the process.
// It is loaded once at startup and every Add rewrites the backing file.
type Library struct {
	m       sync.RWMutex
	file    *FileStore
	records []models.MediaRecord
}

func NewLibrary(file *FileStore) *Library {
	return &Library{
		file:    file,
		records: file.Load(),
	}
}

// All returns a copy of the collection so callers can't mutate shared state
func (l *Library) All() []models.MediaRecord {
	l.m.RLock()
	defer l.m.RUnlock()
	out := make([]models.MediaRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Library) Get(id int) (models.MediaRecord, bool) {
	idx := l.Index(id)
	if idx < 0 {
		return models.MediaRecord{}, false
	}
	return l.At(idx)
}

// Index returns the position of the record with the given id or -1
func (l *Library) Index(id int) int {
	l.m.RLock()
	defer l.m.RUnlock()
	for i, r := range l.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (l *Library) At(index int) (models.MediaRecord, bool) {
	l.m.RLock()
	defer l.m.RUnlock()
	if index < 0 || index >= len(l.records) {
		return models.MediaRecord{}, false
	}
	return l.records[index], true
}

// Add persists record with a freshly assigned id and returns the stored copy
func (l *Library) Add(record models.MediaRecord) (models.MediaRecord, error) {
	l.m.Lock()
	defer l.m.Unlock()
	updated, err := l.file.Append(l.records, record)
	if err != nil {
		return models.MediaRecord{}, err
	}
	l.records = updated
	return updated[len(updated)-1], nil
}

func (l *Library) Stats() Stats {
	l.m.RLock()
	defer l.m.RUnlock()
	s := Stats{Total: len(l.records)}
	for _, r := range l.records {
		switch r.Type {
		case models.Image:
			s.Photos++
		case models.Video:
			s.Videos++
		}
	}
	return s
}
