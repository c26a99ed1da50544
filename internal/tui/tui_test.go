package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"github.com/sadopc/dayball/internal/ball"
	"github.com/sadopc/dayball/internal/store"
)

var testStart = time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local) // a Friday

func newTestBall(t *testing.T, s *store.Store) (*ball.Ball, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testStart)
	return ball.New(s, ball.WithSeed(7), ball.WithClock(clock)), clock
}

func newTestApp(t *testing.T) (App, *clockwork.FakeClock) {
	t.Helper()
	s := store.NewMemory()
	b, clock := newTestBall(t, s)
	app := NewApp(s, b, 25)
	app.exportTo = t.TempDir()
	return app, clock
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// collect runs cmd and every command nested in a batch, returning the
// messages produced. Only use it for commands that do not sleep.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// feed delivers the calendar's own data messages back into it and returns
// whatever else the command produced.
func feed(c calendarModel, cmd tea.Cmd) (calendarModel, []tea.Msg) {
	var rest []tea.Msg
	for _, msg := range collect(cmd) {
		if data, ok := msg.(calendarDataMsg); ok {
			c, _ = c.update(data)
			continue
		}
		rest = append(rest, msg)
	}
	return c, rest
}

func plain(s string) string {
	return ansi.Strip(s)
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Fatalf("formatSeconds(3661) = %q", got)
	}
}

func TestFormatWorkTime(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0h 0m"},
		{59, "0h 0m"},
		{90, "0h 1m"},
		{3599, "0h 59m"},
		{8100, "2h 15m"},
		{90000, "25h 0m"},
	}
	for _, tt := range tests {
		got := formatWorkTime(tt.secs)
		if got != tt.want {
			t.Errorf("formatWorkTime(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0.0h"},
		{1800, "0.5h"},
		{5400, "1.5h"},
	}
	for _, tt := range tests {
		got := formatHours(tt.secs)
		if got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestDateKeyAndMidnight(t *testing.T) {
	at := time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local)
	if got := dateKey(at); got != "2024-02-29" {
		t.Fatalf("dateKey = %q", got)
	}
	m := midnight(at)
	if m.Hour() != 0 || m.Minute() != 0 || m.Day() != 29 {
		t.Fatalf("midnight = %v", m)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long text", 5, "too …"},
		{"añadir tarea", 4, "aña…"},
		{"x", 0, "x"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		got := truncate(tt.s, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 3 {
		t.Fatalf("expected 3 view names, got %d", len(viewNames))
	}
	want := []string{"Ball", "Calendar", "Reports"}
	for i, name := range want {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

// ============================================================
// Ball rendering
// ============================================================

func TestBlend(t *testing.T) {
	if got := blend("#000000", "#ffffff", 0); got != "#000000" {
		t.Fatalf("blend at 0 = %q", got)
	}
	if got := blend("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Fatalf("blend at 1 = %q", got)
	}
	if got := blend("#000000", "#ffffff", -3); got != "#000000" {
		t.Fatalf("blend below 0 should clamp, got %q", got)
	}
	if got := fade("#ffffff", 0); got != strings.ToLower(hexBg) {
		t.Fatalf("fade at alpha 0 should be the background, got %q", got)
	}
}

func TestPolar(t *testing.T) {
	dist, _, _ := polar(ballRows/2, ballCols/2)
	if dist != 0 {
		t.Fatalf("centre distance = %v", dist)
	}
	_, _, top := polar(0, ballCols/2)
	if top != 0 {
		t.Fatalf("twelve o'clock = %v, want 0", top)
	}
	_, deg, right := polar(ballRows/2, ballCols-1)
	if right != 0.25 {
		t.Fatalf("three o'clock = %v, want 0.25", right)
	}
	if deg != 0 {
		t.Fatalf("east should be 0 degrees, got %v", deg)
	}
}

func TestRenderBallIdle(t *testing.T) {
	b, _ := newTestBall(t, store.NewMemory())
	out := plain(renderBall(b, testStart))

	if lines := strings.Count(out, "\n") + 1; lines != ballRows {
		t.Fatalf("expected %d rows, got %d", ballRows, lines)
	}
	if !strings.Contains(out, "MAR") {
		t.Fatal("idle ball should show the month")
	}
	if !strings.Contains(out, "15") {
		t.Fatal("idle ball should show the day")
	}
}

func TestRenderBallFocus(t *testing.T) {
	b, _ := newTestBall(t, store.NewMemory())
	b.StartFocus(25)
	out := plain(renderBall(b, testStart))

	if !strings.Contains(out, "25:00") {
		t.Fatalf("focus ball should show the countdown:\n%s", out)
	}
	if strings.ContainsRune(out, '░') {
		t.Fatal("a fresh countdown should show the whole ring as remaining")
	}

	b.Tick()
	if got := plain(renderBall(b, testStart)); !strings.Contains(got, "24:59") {
		t.Fatalf("countdown did not advance:\n%s", got)
	}

	b.StartFocus(1)
	for range 30 {
		b.Tick()
	}
	if got := plain(renderBall(b, testStart)); !strings.ContainsRune(got, '░') {
		t.Fatalf("half a countdown should show the consumed track:\n%s", got)
	}
}

func TestRenderBallWork(t *testing.T) {
	b, clock := newTestBall(t, store.NewMemory())
	b.StartWork()
	clock.Advance(75 * time.Second)
	out := plain(renderBall(b, testStart))

	if !strings.Contains(out, "WORK") {
		t.Fatal("work ball should be labelled")
	}
	if !strings.Contains(out, "1:15") {
		t.Fatalf("work ball should show elapsed time:\n%s", out)
	}
	if lines := strings.Count(out, "\n") + 1; lines != ballRows {
		t.Fatalf("expected %d rows, got %d", ballRows, lines)
	}
}

func TestRenderBallKeepsIntensity(t *testing.T) {
	b, _ := newTestBall(t, store.NewMemory())
	b.StartWork()
	for i := 0; i < 50; i++ {
		b.Animate()
	}
	before := b.State()
	renderBall(b, testStart)
	renderBall(b, testStart)
	if b.State() != before {
		t.Fatal("rendering should not change the timer state")
	}
}

// ============================================================
// Ball view
// ============================================================

func TestBallViewWorkAndStop(t *testing.T) {
	s := store.NewMemory()
	b, clock := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	m, cmd := m.update(keyPress("w"))
	if cmd == nil {
		t.Fatal("starting work should schedule ticks")
	}
	if b.Mode() != ball.Work {
		t.Fatalf("mode = %v, want WORK", b.Mode())
	}

	clock.Advance(90 * time.Second)
	m, cmd = m.update(keyPress("x"))
	if b.Mode() != ball.Idle {
		t.Fatal("stop should return to idle")
	}
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	logged, ok := msgs[0].(workLoggedMsg)
	if !ok || logged.seconds != 90 {
		t.Fatalf("expected workLoggedMsg{90}, got %#v", msgs[0])
	}
	if got := s.GetWorkTime("2024-03-15"); got != 90 {
		t.Fatalf("stored work time = %d, want 90", got)
	}
}

func TestBallViewStopNoTime(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	m, _ = m.update(keyPress("w"))
	_, cmd := m.update(keyPress("x"))
	msgs := collect(cmd)
	st, ok := msgs[0].(statusMsg)
	if !ok || st.text != "Work stopped" {
		t.Fatalf("expected plain stop status, got %#v", msgs[0])
	}
	if s.HasTasks("2024-03-15") || s.GetWorkTime("2024-03-15") != 0 {
		t.Fatal("zero-second session should not be recorded")
	}
}

func TestBallViewStopWhenIdle(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	if _, cmd := m.update(keyPress("x")); cmd != nil {
		t.Fatal("stop while idle should do nothing")
	}
}

func TestBallViewFocusPresets(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 20)

	m, _ = m.update(keyPress("f"))
	if b.Mode() != ball.Focus || b.TotalSeconds() != 20*60 {
		t.Fatalf("f should start the preset, got %v %d", b.Mode(), b.TotalSeconds())
	}

	m, _ = m.update(keyPress("F"))
	if b.TotalSeconds() != longFocusMinutes*60 {
		t.Fatalf("F should start the long preset, got %d", b.TotalSeconds())
	}

	_, cmd := m.update(keyPress("x"))
	msgs := collect(cmd)
	if st, ok := msgs[0].(statusMsg); !ok || st.text != "Focus stopped" {
		t.Fatalf("unexpected stop result %#v", msgs[0])
	}
	if s.GetWorkTime("2024-03-15") != 0 {
		t.Fatal("focus time must not be recorded as work")
	}
}

func TestBallViewWorkStoppedMsg(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	_, cmd := m.update(ball.WorkStoppedMsg{ID: b.ID(), Seconds: 30})
	msgs := collect(cmd)
	if logged, ok := msgs[0].(workLoggedMsg); !ok || logged.seconds != 30 {
		t.Fatalf("expected workLoggedMsg{30}, got %#v", msgs[0])
	}

	_, cmd = m.update(ball.WorkStoppedMsg{ID: b.ID(), Err: os.ErrPermission})
	msgs = collect(cmd)
	if st, ok := msgs[0].(statusMsg); !ok || !st.isError {
		t.Fatalf("write error should become an error status, got %#v", msgs[0])
	}

	if _, cmd := m.update(ball.WorkStoppedMsg{ID: b.ID() + 1000, Seconds: 5}); cmd != nil {
		t.Fatal("messages from another ball should be ignored")
	}
}

func TestBallViewFocusDone(t *testing.T) {
	var rung bytes.Buffer
	prev := bell
	bell = &rung
	t.Cleanup(func() { bell = prev })

	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	_, cmd := m.update(ball.FocusDoneMsg{ID: b.ID(), Minutes: 25})
	msgs := collect(cmd)
	st, ok := msgs[0].(statusMsg)
	if !ok || !strings.Contains(st.text, "Focus complete") {
		t.Fatalf("expected completion status, got %#v", msgs[0])
	}
	if rung.String() != "\a" {
		t.Fatalf("bell = %q, want a single BEL", rung.String())
	}

	_, cmd = m.update(ball.FocusDoneMsg{ID: b.ID() + 1, Minutes: 25})
	if cmd != nil || rung.Len() != 1 {
		t.Fatal("another ball's completion should not ring")
	}
}

func TestBallViewForeignTick(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	if _, cmd := m.update(ball.TickMsg{ID: b.ID() + 1000}); cmd != nil {
		t.Fatal("foreign tick should not re-arm anything")
	}
}

func TestBallViewCustomFocus(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	m, _ = m.update(keyPress("c"))
	if !m.formActive {
		t.Fatal("c should open the focus dialog")
	}
	if *m.customMinutes != "25" {
		t.Fatalf("dialog should start at the preset, got %q", *m.customMinutes)
	}

	*m.customMinutes = "10"
	m.form.State = huh.StateCompleted
	m, _ = m.update(keyPress("enter"))
	if m.formActive {
		t.Fatal("dialog should close when completed")
	}
	if b.Mode() != ball.Focus || b.TotalSeconds() != 600 {
		t.Fatalf("expected a 10 minute focus, got %v %d", b.Mode(), b.TotalSeconds())
	}
}

func TestBallViewCustomFocusCancel(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)

	m, _ = m.update(keyPress("c"))
	m, _ = m.update(keyPress("esc"))
	if m.formActive {
		t.Fatal("esc should close the dialog")
	}
	if b.Mode() != ball.Idle {
		t.Fatal("cancelling should not start anything")
	}
}

func TestValidateMinutes(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"25", true},
		{" 5 ", true},
		{"1", true},
		{"240", true},
		{"0", false},
		{"241", false},
		{"-3", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		err := validateMinutes(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("validateMinutes(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
		}
	}
}

func TestBallViewRender(t *testing.T) {
	s := store.NewMemory()
	b, _ := newTestBall(t, s)
	m := newBallModel(s, b, 25)
	m.setSize(100, 40)

	out := plain(m.view())
	if !strings.Contains(out, "Floating Ball") || !strings.Contains(out, "Today:") {
		t.Fatalf("idle view missing labels:\n%s", out)
	}

	b.StartWork()
	if out := plain(m.view()); !strings.Contains(out, "WORK SESSION") {
		t.Fatalf("work view missing label:\n%s", out)
	}

	b.StartFocus(5)
	if out := plain(m.view()); !strings.Contains(out, "FOCUS 5 MIN") {
		t.Fatalf("focus view missing label:\n%s", out)
	}
}

// ============================================================
// Calendar
// ============================================================

func newTestCalendar(t *testing.T) (calendarModel, *store.Store) {
	t.Helper()
	s := store.NewMemory()
	c := newCalendarModel(s, testStart)
	c.setSize(120, 40)
	return c, s
}

func TestCalendarNavigation(t *testing.T) {
	c, _ := newTestCalendar(t)

	steps := []struct {
		key  string
		want string
	}{
		{"left", "2024-03-14"},
		{"right", "2024-03-15"},
		{"]", "2024-03-22"},
		{"[", "2024-03-15"},
		{">", "2024-04-15"},
		{"<", "2024-03-15"},
		{"<", "2024-02-15"},
		{"t", "2024-03-15"},
	}
	for _, st := range steps {
		c, _ = c.update(keyPress(st.key))
		if got := dateKey(c.selected); got != st.want {
			t.Fatalf("after %q selected %s, want %s", st.key, got, st.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-12-15", 1, "2025-01-15"},
		{"2024-01-10", -1, "2023-12-10"},
	}
	for _, tt := range tests {
		from, _ := time.ParseInLocation(store.DateLayout, tt.from, time.Local)
		if got := dateKey(addMonths(from, tt.n)); got != tt.want {
			t.Errorf("addMonths(%s, %d) = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestCalendarAddTask(t *testing.T) {
	c, s := newTestCalendar(t)

	c, _ = c.update(keyPress("n"))
	if !c.formActive {
		t.Fatal("n should open the task dialog")
	}
	*c.formText = "  buy milk  "
	c.form.State = huh.StateCompleted
	c, cmd := c.update(keyPress("enter"))
	c, _ = feed(c, cmd)

	if c.formActive {
		t.Fatal("dialog should close")
	}
	tasks := s.GetTasks("2024-03-15")
	if len(tasks) != 1 || tasks[0].Text != "buy milk" {
		t.Fatalf("stored tasks = %+v", tasks)
	}
	if len(c.tasks) != 1 {
		t.Fatal("list should refresh after adding")
	}
}

func TestCalendarAddBlankTask(t *testing.T) {
	c, s := newTestCalendar(t)

	c, _ = c.update(keyPress("n"))
	*c.formText = "   "
	c.form.State = huh.StateCompleted
	c, _ = c.update(keyPress("enter"))
	if s.HasTasks("2024-03-15") {
		t.Fatal("blank text should not create a task")
	}
}

func TestCalendarToggleDeleteClear(t *testing.T) {
	c, s := newTestCalendar(t)
	for _, text := range []string{"a", "b", "c"} {
		s.AddTask("2024-03-15", text)
	}
	c, _ = feed(c, c.refresh())
	if len(c.tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(c.tasks))
	}

	// Completing "a" moves it to the end.
	c, cmd := c.update(keyPress("space"))
	c, _ = feed(c, cmd)
	if c.tasks[2].Text != "a" || !c.tasks[2].Completed {
		t.Fatalf("toggled task should sort last: %+v", c.tasks)
	}

	c, _ = c.update(keyPress("down"))
	c, cmd = c.update(keyPress("d"))
	c, _ = feed(c, cmd)
	if len(c.tasks) != 2 || c.tasks[0].Text != "b" {
		t.Fatalf("delete should remove the task under the cursor: %+v", c.tasks)
	}

	c, cmd = c.update(keyPress("C"))
	c, msgs := feed(c, cmd)
	if len(c.tasks) != 1 || c.tasks[0].Text != "b" {
		t.Fatalf("clear should leave only open tasks: %+v", c.tasks)
	}
	if len(msgs) != 1 || msgs[0].(statusMsg).text != "Cleared 1 completed" {
		t.Fatalf("unexpected clear status %v", msgs)
	}

	if _, cmd = c.update(keyPress("C")); cmd != nil {
		t.Fatal("clearing with nothing completed should do nothing")
	}
}

func TestCalendarEmptyListKeys(t *testing.T) {
	c, s := newTestCalendar(t)

	if _, cmd := c.update(keyPress("space")); cmd != nil {
		t.Fatal("toggle on an empty list should do nothing")
	}
	if _, cmd := c.update(keyPress("d")); cmd != nil {
		t.Fatal("delete on an empty list should do nothing")
	}
	if len(s.Dates()) != 0 {
		t.Fatal("no date should be created")
	}
}

func TestCalendarCursorBounds(t *testing.T) {
	c, s := newTestCalendar(t)
	s.AddTask("2024-03-15", "a")
	s.AddTask("2024-03-15", "b")
	c, _ = feed(c, c.refresh())

	c, _ = c.update(keyPress("up"))
	if c.cursor != 0 {
		t.Fatal("cursor should not go above the list")
	}
	for i := 0; i < 5; i++ {
		c, _ = c.update(keyPress("down"))
	}
	if c.cursor != 1 {
		t.Fatalf("cursor should stop at the last task, got %d", c.cursor)
	}
}

func TestCalendarStaleData(t *testing.T) {
	c, s := newTestCalendar(t)
	s.AddTask("2024-03-14", "yesterday")

	stale := c.refresh()
	c, _ = c.update(keyPress("left"))
	c, _ = feed(c, stale)
	if len(c.tasks) != 0 {
		t.Fatal("data for a different date should be ignored")
	}
	c, _ = feed(c, c.refresh())
	if len(c.tasks) != 1 {
		t.Fatal("data for the selected date should load")
	}
}

func TestCalendarSetToday(t *testing.T) {
	c, _ := newTestCalendar(t)

	c, _ = c.setToday(testStart.Add(time.Hour))
	if dateKey(c.today) != "2024-03-15" {
		t.Fatal("same day should not move the marker")
	}

	c, _ = c.setToday(testStart.Add(24 * time.Hour))
	if dateKey(c.today) != "2024-03-16" || dateKey(c.selected) != "2024-03-16" {
		t.Fatalf("selection on today should follow, got today=%s selected=%s", dateKey(c.today), dateKey(c.selected))
	}

	c, _ = c.update(keyPress("left"))
	c, _ = c.setToday(testStart.Add(48 * time.Hour))
	if dateKey(c.selected) != "2024-03-15" {
		t.Fatal("a selection elsewhere should stay put")
	}
}

func TestCalendarRender(t *testing.T) {
	c, s := newTestCalendar(t)
	s.AddTask("2024-03-15", "write report")
	s.AddWorkTime("2024-03-15", 8100)
	c, _ = feed(c, c.refresh())

	out := plain(c.view())
	for _, want := range []string{"March 2024", "Mo Tu We Th Fr Sa Su", "31", "write report", "Worked 2h 15m", "0/1 done"} {
		if !strings.Contains(out, want) {
			t.Fatalf("calendar view missing %q:\n%s", want, out)
		}
	}
}

func TestCalendarMonthStartsMonday(t *testing.T) {
	c, _ := newTestCalendar(t)
	// March 2024 begins on a Friday: four blank cells, then the 1st.
	lines := strings.Split(plain(c.renderMonth()), "\n")
	var first string
	for _, l := range lines {
		if strings.Contains(l, " 1") && !strings.Contains(l, "Mo") {
			first = l
			break
		}
	}
	if !strings.HasPrefix(first, strings.Repeat("   ", 4)+" 1 ") {
		t.Fatalf("first week misaligned: %q", first)
	}
}

func TestCalendarNoWorkLabel(t *testing.T) {
	c, _ := newTestCalendar(t)
	c, _ = feed(c, c.refresh())
	out := plain(c.view())
	if strings.Contains(out, "Worked") {
		t.Fatal("work label should be hidden without work time")
	}
	if !strings.Contains(out, "No tasks") {
		t.Fatal("empty day should say so")
	}
}

// ============================================================
// Reports
// ============================================================

func TestReportsDateRangeDaily(t *testing.T) {
	r := newReportsModel(store.NewMemory())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	from, to := r.dateRange(now)
	if dateKey(from) != "2024-03-09" || dateKey(to) != "2024-03-16" {
		t.Fatalf("daily range = %s..%s", dateKey(from), dateKey(to))
	}

	r.offset = 1
	from, to = r.dateRange(now)
	if dateKey(from) != "2024-03-02" || dateKey(to) != "2024-03-09" {
		t.Fatalf("previous page = %s..%s", dateKey(from), dateKey(to))
	}
}

func TestReportsDateRangeWeekly(t *testing.T) {
	r := newReportsModel(store.NewMemory())
	r.mode = reportWeekly

	for _, day := range []int{11, 15, 17} { // Monday, Friday, Sunday
		now := time.Date(2024, 3, day, 12, 0, 0, 0, time.Local)
		from, to := r.dateRange(now)
		if dateKey(from) != "2024-03-11" || dateKey(to) != "2024-03-18" {
			t.Fatalf("week of Mar %d = %s..%s", day, dateKey(from), dateKey(to))
		}
	}

	r.offset = 1
	from, _ := r.dateRange(time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local))
	if dateKey(from) != "2024-03-04" {
		t.Fatalf("previous week starts %s", dateKey(from))
	}
}

func TestReportsKeys(t *testing.T) {
	r := newReportsModel(store.NewMemory())

	r, _ = r.update(keyPress("left"))
	r, _ = r.update(keyPress("left"))
	if r.offset != 2 {
		t.Fatalf("offset = %d, want 2", r.offset)
	}
	r, _ = r.update(keyPress("right"))
	r, _ = r.update(keyPress("right"))
	r, _ = r.update(keyPress("right"))
	if r.offset != 0 {
		t.Fatalf("offset should not go negative, got %d", r.offset)
	}

	r.offset = 3
	r, _ = r.update(keyPress("m"))
	if r.mode != reportWeekly || r.offset != 0 {
		t.Fatal("m should switch to weekly and reset the page")
	}
	r, _ = r.update(keyPress("m"))
	if r.mode != reportDaily {
		t.Fatal("m should switch back to daily")
	}
}

func TestReportsRefresh(t *testing.T) {
	s := store.NewMemory()
	today := dateKey(time.Now())
	s.AddWorkTime(today, 5400)
	s.AddTask(today, "done")
	s.ToggleTaskStatus(today, 0)
	s.AddWorkTime("1999-01-01", 60)

	r := newReportsModel(s)
	r.setSize(120, 40)
	msgs := collect(r.refresh())
	data, ok := msgs[0].(reportsDataMsg)
	if !ok {
		t.Fatalf("expected reportsDataMsg, got %#v", msgs[0])
	}
	if len(data.summaries) != 1 || data.summaries[0].WorkSeconds != 5400 {
		t.Fatalf("summaries = %+v", data.summaries)
	}

	r, _ = r.update(data)
	out := plain(r.view())
	for _, want := range []string{"Reports", "Daily", "Weekly", today, "1.5h", "1/1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("reports view missing %q:\n%s", want, out)
		}
	}
}

func TestReportsEmpty(t *testing.T) {
	r := newReportsModel(store.NewMemory())
	r.setSize(120, 40)
	r, _ = r.update(reportsDataMsg{})
	if out := plain(r.view()); !strings.Contains(out, "No data for this period") {
		t.Fatalf("empty reports should say so:\n%s", out)
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewBall {
		t.Fatal("default view should be the ball")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
	if app.Init() == nil {
		t.Fatal("Init should load data and start the date tick")
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)

	for _, v := range []viewState{viewBall, viewCalendar, viewReports} {
		app.activeView = v
		if out := app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabs(t *testing.T) {
	app, _ := newTestApp(t)

	keysToViews := []struct {
		key  string
		want viewState
	}{
		{"2", viewCalendar},
		{"3", viewReports},
		{"1", viewBall},
		{"tab", viewCalendar},
		{"tab", viewReports},
		{"tab", viewBall},
	}
	for _, kv := range keysToViews {
		model, _ := app.Update(keyPress(kv.key))
		app = model.(App)
		if app.activeView != kv.want {
			t.Fatalf("after %q view = %d, want %d", kv.key, app.activeView, kv.want)
		}
	}
}

func TestAppBallKeysFromOtherViews(t *testing.T) {
	app, clock := newTestApp(t)
	app.activeView = viewCalendar

	model, _ := app.Update(keyPress("w"))
	app = model.(App)
	if app.ball.Mode() != ball.Work {
		t.Fatal("w should start work from the calendar")
	}
	if app.activeView != viewCalendar {
		t.Fatal("timer keys should not switch views")
	}

	clock.Advance(2 * time.Minute)
	_, cmd := app.Update(keyPress("x"))
	msgs := collect(cmd)
	if logged, ok := msgs[0].(workLoggedMsg); !ok || logged.seconds != 120 {
		t.Fatalf("unexpected stop result %#v", msgs[0])
	}
}

func TestAppFormCapturesKeys(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewCalendar

	model, _ := app.Update(keyPress("n"))
	app = model.(App)
	if !app.isFormActive() {
		t.Fatal("n should open the calendar dialog")
	}

	model, _ = app.Update(keyPress("3"))
	app = model.(App)
	if app.activeView != viewCalendar {
		t.Fatal("keys should go to the form while it is open")
	}
	if app.ball.Mode() != ball.Idle {
		t.Fatal("typing in a form must not start the timer")
	}
}

func TestAppWorkLogged(t *testing.T) {
	app, _ := newTestApp(t)

	model, cmd := app.Update(workLoggedMsg{seconds: 5400})
	app = model.(App)
	if app.status != "Logged 1h 30m" {
		t.Fatalf("status = %q", app.status)
	}
	if cmd == nil {
		t.Fatal("logging work should refresh the calendar and reports")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "disk full", isError: true})
	app = model.(App)
	if !app.isError {
		t.Fatal("error flag should be kept")
	}
	if !strings.Contains(plain(app.renderFooter()), "disk full") {
		t.Fatal("footer should contain the status message")
	}
}

func TestAppFooterTimer(t *testing.T) {
	app, clock := newTestApp(t)
	app.width = 120
	app.height = 40

	app.ball.StartWork()
	clock.Advance(65 * time.Second)
	if out := plain(app.renderFooter()); !strings.Contains(out, "1:05") {
		t.Fatalf("footer should show the work clock:\n%s", out)
	}

	app.ball.StartFocus(25)
	if out := plain(app.renderFooter()); !strings.Contains(out, "25:00") {
		t.Fatalf("footer should show the countdown:\n%s", out)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	header := plain(app.renderHeader())
	if !strings.Contains(header, "dayball") {
		t.Fatal("header missing title")
	}
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppHelpToggle(t *testing.T) {
	app, _ := newTestApp(t)

	model, _ := app.Update(keyPress("?"))
	app = model.(App)
	if !app.showHelp || !app.help.ShowAll {
		t.Fatal("? should show full help")
	}
	model, _ = app.Update(keyPress("?"))
	app = model.(App)
	if app.showHelp {
		t.Fatal("? should hide help again")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := newTestApp(t)
	_, cmd := app.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
}

func TestAppExport(t *testing.T) {
	for _, tt := range []struct {
		name  string
		moves []string
		ext   string
	}{
		{"csv", nil, ".csv"},
		{"json", []string{"down"}, ".json"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.store.AddTask("2024-03-15", "a")
			app.store.AddWorkTime("2024-03-15", 60)

			model, _ := app.Update(keyPress("e"))
			app = model.(App)
			if !app.exportPicking {
				t.Fatal("e should open the export picker")
			}
			for _, k := range tt.moves {
				model, _ = app.Update(keyPress(k))
				app = model.(App)
			}
			model, cmd := app.Update(keyPress("enter"))
			app = model.(App)
			if app.exportPicking {
				t.Fatal("picker should close on enter")
			}

			done, ok := cmd().(exportDoneMsg)
			if !ok {
				t.Fatal("export should finish with exportDoneMsg")
			}
			if filepath.Ext(done.path) != tt.ext || filepath.Dir(done.path) != app.exportTo {
				t.Fatalf("unexpected export path %q", done.path)
			}
			data, err := os.ReadFile(done.path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "2024-03-15") {
				t.Fatalf("export missing the stored day:\n%s", data)
			}
		})
	}
}

func TestAppExportCancel(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(keyPress("e"))
	app = model.(App)
	model, cmd := app.Update(keyPress("esc"))
	app = model.(App)
	if app.exportPicking || cmd != nil {
		t.Fatal("esc should close the picker without exporting")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"today", func() string { return todayStyle.Render("test") }},
		{"selectedDay", func() string { return selectedDayStyle.Render("test") }},
		{"markedDay", func() string { return markedDayStyle.Render("test") }},
		{"completedTask", func() string { return completedTaskStyle.Render("test") }},
		{"workTime", func() string { return workTimeStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if !strings.Contains(plain(s.fn()), "test") {
			t.Fatalf("style %q lost its text", s.name)
		}
	}
}
