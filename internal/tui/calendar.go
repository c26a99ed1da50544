package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayball/internal/store"
)

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

type calendarModel struct {
	store  *store.Store
	width  int
	height int

	today    time.Time
	selected time.Time
	tasks    []store.Task
	work     int64
	cursor   int

	formActive bool
	form       *huh.Form
	formText   *string
}

func newCalendarModel(s *store.Store, now time.Time) calendarModel {
	text := ""
	day := midnight(now)
	return calendarModel{
		store:    s,
		today:    day,
		selected: day,
		formText: &text,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	date  string
	tasks []store.Task
	work  int64
}

func (c calendarModel) refresh() tea.Cmd {
	date := dateKey(c.selected)
	return func() tea.Msg {
		return calendarDataMsg{
			date:  date,
			tasks: c.store.GetTasks(date),
			work:  c.store.GetWorkTime(date),
		}
	}
}

// setToday moves the today marker. A selection that sat on the old today
// follows it into the new day.
func (c calendarModel) setToday(now time.Time) (calendarModel, tea.Cmd) {
	day := midnight(now)
	if day.Equal(c.today) {
		return c, nil
	}
	follow := c.selected.Equal(c.today)
	c.today = day
	if follow {
		return c.selectDate(day)
	}
	return c, nil
}

func (c calendarModel) selectDate(t time.Time) (calendarModel, tea.Cmd) {
	c.selected = midnight(t)
	c.cursor = 0
	return c, c.refresh()
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		if msg.date != dateKey(c.selected) {
			return c, nil
		}
		c.tasks = msg.tasks
		c.work = msg.work
		if c.cursor >= len(c.tasks) {
			c.cursor = max(0, len(c.tasks)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			return c.selectDate(c.selected.AddDate(0, 0, -1))
		case key.Matches(msg, keys.Right):
			return c.selectDate(c.selected.AddDate(0, 0, 1))
		case key.Matches(msg, keys.PrevWeek):
			return c.selectDate(c.selected.AddDate(0, 0, -7))
		case key.Matches(msg, keys.NextWeek):
			return c.selectDate(c.selected.AddDate(0, 0, 7))
		case key.Matches(msg, keys.PrevMonth):
			return c.selectDate(addMonths(c.selected, -1))
		case key.Matches(msg, keys.NextMonth):
			return c.selectDate(addMonths(c.selected, 1))
		case key.Matches(msg, keys.Today):
			return c.selectDate(c.today)
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.tasks)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showTaskForm()
		case key.Matches(msg, keys.Toggle):
			if len(c.tasks) == 0 {
				return c, nil
			}
			if err := c.store.ToggleTaskStatus(dateKey(c.selected), c.cursor); err != nil {
				return c, errStatus(err)
			}
			return c, c.refresh()
		case key.Matches(msg, keys.Delete):
			if len(c.tasks) == 0 {
				return c, nil
			}
			if _, err := c.store.RemoveTask(dateKey(c.selected), c.cursor); err != nil {
				return c, errStatus(err)
			}
			return c, c.refresh()
		case key.Matches(msg, keys.Clear):
			n, err := c.store.ClearCompleted(dateKey(c.selected))
			if err != nil {
				return c, errStatus(err)
			}
			if n == 0 {
				return c, nil
			}
			return c, tea.Batch(c.refresh(), func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Cleared %d completed", n)}
			})
		}
	}
	return c, nil
}

// addMonths keeps the day of month where possible and clamps to the end
// of shorter months instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func (c calendarModel) showTaskForm() (calendarModel, tea.Cmd) {
	*c.formText = ""
	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New task for " + c.selected.Format("Mon, Jan 2")).
				Value(c.formText),
		),
	).WithShowHelp(true).WithShowErrors(true)
	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		c.formActive = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		text := strings.TrimSpace(*c.formText)
		if text == "" {
			return c, nil
		}
		if err := c.store.AddTask(dateKey(c.selected), text); err != nil {
			return c, errStatus(err)
		}
		return c, c.refresh()
	}
	return c, cmd
}

func (c calendarModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		return panelStyle.Width(w).Render(c.form.View())
	}

	grid := c.renderMonth()
	list := c.renderTasks(max(w-lipgloss.Width(grid)-8, 24))

	nav := mutedStyle.Render("←/→ day  [/] week  </> month  t: today  n: new  space: done  d: delete  C: clear done")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", list),
			"", nav,
		),
	)
}

func (c calendarModel) renderMonth() string {
	first := time.Date(c.selected.Year(), c.selected.Month(), 1, 0, 0, 0, 0, c.selected.Location())
	// Monday is column 0.
	lead := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	rows := []string{
		titleStyle.Render(first.Format("January 2006")),
		"",
		mutedStyle.Render(strings.Join(weekdayHeader, " ")),
	}

	var line []string
	for i := 0; i < lead; i++ {
		line = append(line, "  ")
	}
	for d := 1; d <= days; d++ {
		date := first.AddDate(0, 0, d-1)
		line = append(line, c.renderDay(date))
		if len(line) == 7 {
			rows = append(rows, strings.Join(line, " "))
			line = nil
		}
	}
	if len(line) > 0 {
		rows = append(rows, strings.Join(line, " "))
	}

	rows = append(rows, "",
		markedDayStyle.Render("●")+mutedStyle.Render(" has tasks  ")+
			todayStyle.Render("●")+mutedStyle.Render(" today"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (c calendarModel) renderDay(date time.Time) string {
	label := fmt.Sprintf("%2d", date.Day())
	switch {
	case date.Equal(c.selected):
		return selectedDayStyle.Render(label)
	case date.Equal(c.today):
		return todayStyle.Render(label)
	case c.store.HasTasks(dateKey(date)):
		return markedDayStyle.Render(label)
	}
	return normalItemStyle.Render(label)
}

func (c calendarModel) renderTasks(w int) string {
	header := titleStyle.Render(c.selected.Format("Monday, January 2"))
	rows := []string{header}
	if c.work > 0 {
		rows = append(rows, workTimeStyle.Render("Worked "+formatWorkTime(c.work)))
	}
	rows = append(rows, "")

	if len(c.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks. Press n to add one."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	done := 0
	for i, t := range c.tasks {
		box := "[ ]"
		text := normalItemStyle.Render(truncate(t.Text, w-6))
		if t.Completed {
			done++
			box = successStyle.Render("[x]")
			text = completedTaskStyle.Render(truncate(t.Text, w-6))
		}
		cursor := "  "
		if i == c.cursor {
			cursor = selectedItemStyle.Render("> ")
		}
		rows = append(rows, cursor+box+" "+text)
	}
	rows = append(rows, "", subtitleStyle.Render(fmt.Sprintf("%d/%d done", done, len(c.tasks))))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
