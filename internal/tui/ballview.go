package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayball/internal/ball"
	"github.com/sadopc/dayball/internal/store"
)

const (
	longFocusMinutes = 45
	maxFocusMinutes  = 240
	sparkEvery       = 10 // animation steps per sparkline sample
	sparkWidth       = 31
)

// bell receives the focus-done BEL. tea.Printf drops output while the alt
// screen is active, so it goes to stderr; BEL moves no cursor and leaves
// the renderer's frame intact.
var bell io.Writer = os.Stderr

type ballModel struct {
	store  *store.Store
	ball   *ball.Ball
	width  int
	height int

	focusMinutes int
	spark        sparkline.Model

	formActive    bool
	form          *huh.Form
	customMinutes *string
}

func newBallModel(s *store.Store, b *ball.Ball, focusMinutes int) ballModel {
	minutes := strconv.Itoa(focusMinutes)
	return ballModel{
		store:         s,
		ball:          b,
		focusMinutes:  focusMinutes,
		spark:         newSpark(),
		customMinutes: &minutes,
	}
}

func newSpark() sparkline.Model {
	return sparkline.New(sparkWidth, 3,
		sparkline.WithMaxValue(1),
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(hexSparkline))),
	)
}

func (m *ballModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m ballModel) update(msg tea.Msg) (ballModel, tea.Cmd) {
	// The ball keeps running while the dialog is open.
	switch msg := msg.(type) {
	case ball.TickMsg:
		step := m.ball.Step()
		cmd := m.ball.Update(msg)
		if s := m.ball.Step(); s != step && s%sparkEvery == 0 {
			m.spark.Push(m.ball.Intensity())
			m.spark.Draw()
		}
		return m, cmd

	case ball.FocusDoneMsg:
		if msg.ID != m.ball.ID() {
			return m, nil
		}
		return m, func() tea.Msg {
			fmt.Fprint(bell, "\a")
			return statusMsg{text: fmt.Sprintf("Focus complete: %d min", msg.Minutes)}
		}

	case ball.WorkStoppedMsg:
		if msg.ID != m.ball.ID() {
			return m, nil
		}
		return m, workResult(msg.Seconds, msg.Err)
	}

	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Work):
			m.spark = newSpark()
			return m, m.ball.StartWork()
		case key.Matches(msg, keys.Focus):
			return m, m.ball.StartFocus(m.focusMinutes)
		case key.Matches(msg, keys.FocusLong):
			return m, m.ball.StartFocus(longFocusMinutes)
		case key.Matches(msg, keys.FocusAsk):
			return m.showForm()
		case key.Matches(msg, keys.Stop):
			return m.stop()
		}
	}
	return m, nil
}

func (m ballModel) stop() (ballModel, tea.Cmd) {
	if m.ball.Mode() == ball.Idle {
		return m, nil
	}
	wasWork := m.ball.Mode() == ball.Work
	secs, err := m.ball.StopAll()
	if !wasWork {
		return m, func() tea.Msg { return statusMsg{text: "Focus stopped"} }
	}
	return m, workResult(secs, err)
}

// workResult turns a finished work session into messages for the app.
func workResult(secs int64, err error) tea.Cmd {
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error saving work time: %v", err), isError: true}
		}
	}
	if secs <= 0 {
		return func() tea.Msg { return statusMsg{text: "Work stopped"} }
	}
	return func() tea.Msg { return workLoggedMsg{seconds: secs} }
}

func (m ballModel) showForm() (ballModel, tea.Cmd) {
	*m.customMinutes = strconv.Itoa(m.focusMinutes)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Focus length (min)").
				Value(m.customMinutes).
				Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of minutes")
	}
	if n < 1 || n > maxFocusMinutes {
		return fmt.Errorf("between 1 and %d minutes", maxFocusMinutes)
	}
	return nil
}

func (m ballModel) updateForm(msg tea.Msg) (ballModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		minutes, err := strconv.Atoi(strings.TrimSpace(*m.customMinutes))
		if err != nil {
			return m, nil
		}
		return m, m.ball.StartFocus(minutes)
	}
	return m, cmd
}

func (m ballModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Floating Ball")

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	body := renderBall(m.ball, time.Now())

	var label, controls string
	switch m.ball.Mode() {
	case ball.Work:
		label = accentStyle.Bold(true).Render("WORK SESSION")
		controls = mutedStyle.Render("x: stop and save  f: switch to focus")
		body = lipgloss.JoinVertical(lipgloss.Center, body, "", m.spark.View())
	case ball.Focus:
		label = highlightStyle.Bold(true).Render(fmt.Sprintf("FOCUS %d MIN", m.ball.TotalSeconds()/60))
		controls = mutedStyle.Render("x: stop  w: switch to work")
	default:
		label = mutedStyle.Render("Today: " + formatWorkTime(m.store.TodayTotal()))
		controls = mutedStyle.Render(fmt.Sprintf("w: work  f: focus %dm  F: focus %dm  c: custom", m.focusMinutes, longFocusMinutes))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", label, "", controls),
	)
}
