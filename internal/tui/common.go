package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/dayball/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBall viewState = iota
	viewCalendar
	viewReports
)

var viewNames = []string{"Ball", "Calendar", "Reports"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// workLoggedMsg is sent after a work session was added to the store.
type workLoggedMsg struct {
	seconds int64
}

// dateTickMsg fires once a minute so the day rolls over on its own.
type dateTickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatWorkTime renders the calendar label, e.g. "2h 15m".
func formatWorkTime(secs int64) string {
	return fmt.Sprintf("%dh %dm", secs/3600, secs%3600/60)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func dateKey(t time.Time) string {
	return t.Format(store.DateLayout)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
