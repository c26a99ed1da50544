package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DefaultPath is the data file used when no other path is configured.
const DefaultPath = "tasks.json"

// DateLayout is the key format of the document.
const DateLayout = "2006-01-02"

type Store struct {
	mu   sync.RWMutex
	path string // empty for in-memory stores
	days map[string]*DayRecord
}

// New loads the document at path. A missing or unparsable file yields an
// empty store; only failing to create the parent directory is an error.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	s := &Store{path: path, days: make(map[string]*DayRecord)}
	s.load()
	return s, nil
}

// NewMemory creates a store without a backing file; nothing is ever written.
func NewMemory() *Store {
	return &Store{days: make(map[string]*DayRecord)}
}

func (s *Store) Path() string { return s.path }

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("read data file", "path", s.path, "error", err)
		}
		return
	}
	var days map[string]*DayRecord
	if err := json.Unmarshal(data, &days); err != nil {
		slog.Warn("parse data file, starting empty", "path", s.path, "error", err)
		return
	}
	if days == nil {
		// A bare null document decodes cleanly into a nil map.
		slog.Warn("data file holds no object, starting empty", "path", s.path)
		return
	}
	for date, rec := range days {
		if rec == nil {
			delete(days, date)
		}
	}
	s.days = days
	slog.Debug("loaded data file", "path", s.path, "dates", len(days))
}

// save rewrites the whole document. Callers hold the write lock.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := encode(s.days)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		slog.Error("write data file", "path", tmp, "error", err)
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		slog.Error("replace data file", "path", s.path, "error", err)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func encode(days map[string]*DayRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(days); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// record returns the canonical record for date, creating it if needed.
// This is the only place a legacy record is upgraded; callers hold the
// write lock and are about to mutate the record.
func (s *Store) record(date string) *DayRecord {
	rec, ok := s.days[date]
	if !ok {
		rec = &DayRecord{Tasks: []Task{}}
		s.days[date] = rec
	}
	rec.legacy = false
	return rec
}

// Dates returns every date key in ascending order.
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.days))
	for d := range s.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Day returns a copy of the record for date.
func (s *Store) Day(date string) (DayRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.days[date]
	if !ok {
		return DayRecord{}, false
	}
	cp := *rec
	cp.Tasks = append([]Task(nil), rec.Tasks...)
	return cp, true
}
