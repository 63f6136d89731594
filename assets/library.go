package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/Toulouse790/ChrisStudio-sub000/types"
)

// LibraryRecord indexes one downloaded asset on disk.
type LibraryRecord struct {
	ID                    string          `json:"id"`
	Query                 string          `json:"query"`
	MediaType             types.MediaType `json:"media_type"`
	Path                  string          `json:"path"`
	SourceDurationSeconds float64         `json:"source_duration_sec,omitempty"`
	AddedAt               time.Time       `json:"added_at"`
}

// Library is the shared on-disk asset index. Concurrent pipelines append or
// upsert records by stable asset id; nothing is ever updated by position and
// saves merge with whatever is already on disk instead of overwriting it.
type Library struct {
	mu   sync.Mutex
	path string
}

func NewLibrary(path string) *Library {
	return &Library{path: path}
}

// Upsert adds rec to the library, replacing an existing record with the same
// id. Read-merge-write under the lock keeps concurrent writers from clobbering
// each other's entries.
func (l *Library) Upsert(rec LibraryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.loadLocked()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	return l.saveLocked(records)
}

// Lookup returns the library record for id, if present.
func (l *Library) Lookup(id string) (LibraryRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.loadLocked()
	if err != nil {
		return LibraryRecord{}, false, err
	}
	rec, ok := lo.Find(records, func(r LibraryRecord) bool { return r.ID == id })
	return rec, ok, nil
}

// All returns every record in the library.
func (l *Library) All() ([]LibraryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Library) loadLocked() ([]LibraryRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read library %s: %w", l.path, err)
	}
	var records []LibraryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse library %s: %w", l.path, err)
	}
	return records, nil
}

func (l *Library) saveLocked(records []LibraryRecord) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
