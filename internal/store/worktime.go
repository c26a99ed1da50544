package store

import (
	"fmt"
	"time"
)

// AddWorkTime adds seconds to the work total of date and persists.
// Callers are expected to pass non-negative values.
func (s *Store) AddWorkTime(date string, seconds int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record(date)
	rec.WorkSeconds += seconds
	if err := s.save(); err != nil {
		return fmt.Errorf("add work time: %w", err)
	}
	return nil
}

func (s *Store) GetWorkTime(date string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.days[date]; ok {
		return rec.WorkSeconds
	}
	return 0
}

// TodayTotal returns the work seconds recorded for the local date.
func (s *Store) TodayTotal() int64 {
	return s.GetWorkTime(time.Now().Format(DateLayout))
}

// Summaries returns one row per stored date in [from, to), ascending.
func (s *Store) Summaries(from, to time.Time) []DaySummary {
	lo, hi := from.Format(DateLayout), to.Format(DateLayout)
	var out []DaySummary
	for _, date := range s.Dates() {
		if date < lo || date >= hi {
			continue
		}
		out = append(out, s.summary(date))
	}
	return out
}

// AllSummaries returns a row for every stored date.
func (s *Store) AllSummaries() []DaySummary {
	var out []DaySummary
	for _, date := range s.Dates() {
		out = append(out, s.summary(date))
	}
	return out
}

func (s *Store) summary(date string) DaySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds := DaySummary{Date: date}
	rec, ok := s.days[date]
	if !ok {
		return ds
	}
	ds.TaskCount = len(rec.Tasks)
	ds.WorkSeconds = rec.WorkSeconds
	for _, t := range rec.Tasks {
		if t.Completed {
			ds.Completed++
		}
	}
	return ds
}
