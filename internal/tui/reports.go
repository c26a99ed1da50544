package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayball/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	mode      reportMode
	summaries []store.DaySummary
	offset    int // pages back from the current one

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	summaries []store.DaySummary
}

func (r reportsModel) refresh() tea.Cmd {
	from, to := r.dateRange(time.Now())
	return func() tea.Msg {
		return reportsDataMsg{summaries: r.store.Summaries(from, to)}
	}
}

// dateRange is [from, to) in local days: the last seven days in daily
// mode, or a Monday-based week in weekly mode.
func (r reportsModel) dateRange(now time.Time) (time.Time, time.Time) {
	today := midnight(now)

	switch r.mode {
	case reportWeekly:
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start := today.AddDate(0, 0, -int(weekday-time.Monday)-7*r.offset)
		return start, start.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.summaries = msg.summaries
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.ReportMode):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DaySummary, len(r.summaries))
	for _, s := range r.summaries {
		byDate[s.Date] = s
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(hexChartBar))
	from, to := r.dateRange(time.Now())
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		hours := float64(byDate[dateKey(d)].WorkSeconds) / 3600.0
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "work", Value: hours, Style: barStyle}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange(time.Now())
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: daily/weekly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTotals(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTotals() string {
	var work int64
	var tasks, done int
	for _, s := range r.summaries {
		work += s.WorkSeconds
		tasks += s.TaskCount
		done += s.Completed
	}
	return fmt.Sprintf("  %s %s   %s %d/%d",
		mutedStyle.Render("Worked"), workTimeStyle.Render(formatHours(work)),
		mutedStyle.Render("Tasks done"), done, tasks,
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %8s %8s", "Date", "Work", "Tasks", "Done")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 42))))

	for _, s := range r.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %8d %8d",
			s.Date, formatSeconds(s.WorkSeconds), s.TaskCount, s.Completed,
		))
	}

	return strings.Join(rows, "\n")
}
