// Package ball implements the floating ball's timer engine. A ball is
// idle, counting down a focus block, or timing a work session, and keeps
// a smoothed random intensity for the flame drawn while working.
package ball

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

type Mode int

const (
	Idle Mode = iota
	Focus
	Work
)

var modeNames = map[Mode]string{
	Idle:  "IDLE",
	Focus: "FOCUS",
	Work:  "WORK",
}

func (m Mode) String() string { return modeNames[m] }

const (
	DefaultSecondInterval = time.Second
	DefaultFrameInterval  = 30 * time.Millisecond

	// smoothing is the fraction of the remaining distance to the target
	// covered on each animation tick.
	smoothing     = 0.05
	retargetBelow = 0.01
	minTarget     = 0.3
	maxTarget     = 1.0

	dateLayout = "2006-01-02"
)

// WorkRecorder receives the duration of every finished work session.
type WorkRecorder interface {
	AddWorkTime(date string, seconds int64) error
}

// State is a snapshot of the timer, read by the renderer once per frame.
type State struct {
	Mode             Mode
	TotalSeconds     int
	RemainingSeconds int
	WorkStart        time.Time
	Step             int
	Intensity        float64
	Target           float64
}

type stream int

const (
	secondStream stream = iota
	frameStream
)

// TickMsg is delivered by one of the ball's tick streams. Messages from a
// stream that has since been cancelled are ignored by Update.
type TickMsg struct {
	ID     int
	gen    uint64
	stream stream
}

// FocusDoneMsg is sent when a focus countdown reaches zero.
type FocusDoneMsg struct {
	ID      int
	Minutes int
}

// WorkStoppedMsg reports a work session that was closed implicitly
// because another mode was started on top of it.
type WorkStoppedMsg struct {
	ID      int
	Seconds int64
	Err     error
}

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

type Ball struct {
	id       int
	state    State
	clock    clockwork.Clock
	recorder WorkRecorder

	seed   uint64
	rng    *rand.Rand // intensity targets
	jitter *rand.Rand // halo rendering only

	gens      [2]uint64
	intervals [2]time.Duration
}

type Option func(*Ball)

// WithSeed makes the intensity sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Ball) { b.seed = seed }
}

func WithClock(c clockwork.Clock) Option {
	return func(b *Ball) { b.clock = c }
}

func WithIntervals(second, frame time.Duration) Option {
	return func(b *Ball) {
		b.intervals[secondStream] = second
		b.intervals[frameStream] = frame
	}
}

// New returns an idle ball. rec may be nil, in which case finished work
// sessions are measured but not recorded.
func New(rec WorkRecorder, opts ...Option) *Ball {
	b := &Ball{
		id:        nextID(),
		recorder:  rec,
		clock:     clockwork.NewRealClock(),
		seed:      rand.Uint64(),
		intervals: [2]time.Duration{DefaultSecondInterval, DefaultFrameInterval},
		state: State{
			Mode:         Idle,
			TotalSeconds: 25 * 60,
			Intensity:    0.5,
			Target:       0.8,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.rng = rand.New(rand.NewPCG(b.seed, 0x9e3779b97f4a7c15))
	b.jitter = rand.New(rand.NewPCG(b.seed, 0xbf58476d1ce4e5b9))
	return b
}

func (b *Ball) ID() int               { return b.id }
func (b *Ball) State() State          { return b.state }
func (b *Ball) Mode() Mode            { return b.state.Mode }
func (b *Ball) TotalSeconds() int     { return b.state.TotalSeconds }
func (b *Ball) RemainingSeconds() int { return b.state.RemainingSeconds }
func (b *Ball) Intensity() float64    { return b.state.Intensity }
func (b *Ball) Step() int             { return b.state.Step }

// Elapsed is the running length of the current work session.
func (b *Ball) Elapsed() time.Duration {
	if b.state.Mode != Work {
		return 0
	}
	return b.clock.Since(b.state.WorkStart)
}

// Progress is the remaining fraction of the focus countdown in [0, 1].
func (b *Ball) Progress() float64 {
	if b.state.TotalSeconds <= 0 {
		return 0
	}
	p := float64(b.state.RemainingSeconds) / float64(b.state.TotalSeconds)
	return math.Max(0, math.Min(1, p))
}

// StartFocus begins a countdown of minutes. Minutes are not validated.
func (b *Ball) StartFocus(minutes int) tea.Cmd {
	prev := b.leave()
	b.state.Mode = Focus
	b.state.TotalSeconds = minutes * 60
	b.state.RemainingSeconds = b.state.TotalSeconds
	return tea.Batch(prev, b.schedule(secondStream))
}

// StartWork begins an open-ended work session.
func (b *Ball) StartWork() tea.Cmd {
	prev := b.leave()
	b.state.Mode = Work
	b.state.WorkStart = b.clock.Now()
	return tea.Batch(prev, b.schedule(secondStream), b.schedule(frameStream))
}

// StopAll cancels both tick streams and returns to Idle. Leaving a work
// session reports its whole-second duration, when positive, to the
// recorder; the recorder's error is returned.
func (b *Ball) StopAll() (int64, error) {
	b.cancel()
	var secs int64
	var err error
	if b.state.Mode == Work {
		now := b.clock.Now()
		secs = int64(now.Sub(b.state.WorkStart) / time.Second)
		if secs > 0 && b.recorder != nil {
			err = b.recorder.AddWorkTime(now.Format(dateLayout), secs)
		}
		secs = max(secs, 0)
	}
	b.state.Mode = Idle
	return secs, err
}

// leave stops the current mode before another one starts.
func (b *Ball) leave() tea.Cmd {
	if b.state.Mode == Idle {
		b.cancel()
		return nil
	}
	secs, err := b.StopAll()
	if secs == 0 && err == nil {
		return nil
	}
	id := b.id
	return func() tea.Msg {
		return WorkStoppedMsg{ID: id, Seconds: secs, Err: err}
	}
}

// Tick advances the countdown by one second. It reports true when the
// countdown finished and the ball went back to Idle.
func (b *Ball) Tick() bool {
	if b.state.Mode != Focus {
		return false
	}
	b.state.RemainingSeconds--
	if b.state.RemainingSeconds <= 0 {
		b.StopAll()
		return true
	}
	return false
}

// Animate advances the intensity signal by one frame.
func (b *Ball) Animate() {
	if b.state.Mode != Work {
		return
	}
	b.state.Step++
	diff := b.state.Target - b.state.Intensity
	b.state.Intensity += diff * smoothing
	if math.Abs(diff) < retargetBelow {
		b.state.Target = minTarget + b.rng.Float64()*(maxTarget-minTarget)
	}
}

// Update handles the ball's own tick messages and re-arms the stream
// that delivered them.
func (b *Ball) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != b.id || tick.gen != b.gens[tick.stream] {
		return nil
	}
	switch tick.stream {
	case secondStream:
		minutes := b.state.TotalSeconds / 60
		if b.Tick() {
			id := b.id
			return func() tea.Msg { return FocusDoneMsg{ID: id, Minutes: minutes} }
		}
		if b.state.Mode == Idle {
			return nil
		}
		return b.schedule(secondStream)
	case frameStream:
		b.Animate()
		if b.state.Mode != Work {
			return nil
		}
		return b.schedule(frameStream)
	}
	return nil
}

// cancel invalidates every scheduled tick.
func (b *Ball) cancel() {
	b.gens[secondStream]++
	b.gens[frameStream]++
}

func (b *Ball) schedule(s stream) tea.Cmd {
	msg := TickMsg{ID: b.id, gen: b.gens[s], stream: s}
	return tea.Tick(b.intervals[s], func(time.Time) tea.Msg { return msg })
}
