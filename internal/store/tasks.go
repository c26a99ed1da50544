package store

import (
	"fmt"
	"sort"
)

// AddTask appends an incomplete task to date and persists.
func (s *Store) AddTask(date, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record(date)
	rec.Tasks = append(rec.Tasks, Task{Text: text})
	sortTasks(rec.Tasks)
	if err := s.save(); err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	return nil
}

// GetTasks returns a copy of the tasks of date, or nil if there are none.
func (s *Store) GetTasks(date string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.days[date]
	if !ok || len(rec.Tasks) == 0 {
		return nil
	}
	return append([]Task(nil), rec.Tasks...)
}

// RemoveTask deletes the task at index. It reports false, and writes
// nothing, when the index is out of range.
func (s *Store) RemoveTask(date string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRange(date, index) {
		return false, nil
	}
	rec := s.record(date)
	rec.Tasks = append(rec.Tasks[:index], rec.Tasks[index+1:]...)
	if err := s.save(); err != nil {
		return true, fmt.Errorf("remove task: %w", err)
	}
	return true, nil
}

// ToggleTaskStatus flips the completion flag of the task at index.
// Out-of-range indexes and unknown dates are ignored.
func (s *Store) ToggleTaskStatus(date string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRange(date, index) {
		return nil
	}
	rec := s.record(date)
	rec.Tasks[index].Completed = !rec.Tasks[index].Completed
	sortTasks(rec.Tasks)
	if err := s.save(); err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return nil
}

// ClearCompleted removes every completed task of date and returns how
// many were removed.
func (s *Store) ClearCompleted(date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.days[date]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, t := range rec.Tasks {
		if t.Completed {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	rec = s.record(date)
	kept := rec.Tasks[:0]
	for _, t := range rec.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	rec.Tasks = kept
	if err := s.save(); err != nil {
		return n, fmt.Errorf("clear completed: %w", err)
	}
	return n, nil
}

func (s *Store) HasTasks(date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.days[date]
	return ok && len(rec.Tasks) > 0
}

func (s *Store) inRange(date string, index int) bool {
	rec, ok := s.days[date]
	return ok && index >= 0 && index < len(rec.Tasks)
}

// sortTasks moves completed tasks after incomplete ones, keeping the
// relative order inside each group.
func sortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return !tasks[i].Completed && tasks[j].Completed
	})
}
