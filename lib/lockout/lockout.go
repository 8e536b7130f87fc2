package lockout

import (
	"fmt"
	"log/slog"
	"time"

	"quizbuzzer/lib/config"
	"quizbuzzer/lib/playback"
)

const (
	BeepInterval   = time.Second
	BeepGuard      = 800 * time.Millisecond
	DefaultBlink   = 200 * time.Millisecond
	defaultSeconds = 5
)

type Phase int

const (
	Waiting Phase = iota
	Answering
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Answering:
		return "answering"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type Contestant int

const (
	Nobody Contestant = iota
	Red
	Blue
)

func (c Contestant) String() string {
	switch c {
	case Nobody:
		return "nobody"
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Contestant(%d)", int(c))
	}
}

// Indicators are the contestant lamps and the idle heartbeat lamp.
type Indicators interface {
	SetContestant(c Contestant, on bool) error
	ToggleIdle() error
}

type Submitter interface {
	Submit(r playback.Request) bool
}

type Values interface {
	Value(key string) int
}

type State struct {
	Phase      Phase
	Owner      Contestant
	EnteredAt  time.Time
	// Remaining answer time at which the last beep (or the start) happened.
	LastBeepAt time.Duration
	Window     time.Duration
}

// TimeLeft is the remaining answer time at now; zero while waiting.
func (s State) TimeLeft(now time.Time) time.Duration {
	if s.Phase != Answering {
		return 0
	}
	return s.Window - now.Sub(s.EnteredAt)
}

// Machine decides who owns the answer window. It is driven by the
// polling loop through Update and never blocks.
type Machine struct {
	values     Values
	player     Submitter
	lamps      Indicators
	sounds     config.SoundSettings
	priorities config.PrioritySet
	blink      time.Duration
	log        *slog.Logger

	state      State
	lastTieRed bool
	lastBlink  time.Time
}

type Option func(*Machine)

func WithBlinkPeriod(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.blink = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

func New(values Values, player Submitter, lamps Indicators, sounds config.SoundSettings, priorities config.PrioritySet, opts ...Option) *Machine {
	m := &Machine{
		values:     values,
		player:     player,
		lamps:      lamps,
		sounds:     sounds,
		priorities: priorities,
		blink:      DefaultBlink,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State {
	return m.state
}

// Update evaluates one tick. red and blue are the raw buzzer states,
// reset is the answer reset edge from the navigation bank.
func (m *Machine) Update(now time.Time, red, blue, reset bool) {
	switch m.state.Phase {
	case Waiting:
		if red || blue {
			m.enter(now, red, blue)
			return
		}
		if m.lastBlink.IsZero() {
			m.lastBlink = now
		}
		if now.Sub(m.lastBlink) > m.blink {
			m.lamp(m.lamps.ToggleIdle())
			m.lastBlink = now
		}

	case Answering:
		left := m.state.TimeLeft(now)
		if m.state.LastBeepAt-left >= BeepInterval && left >= BeepGuard {
			m.play(m.sounds.Beep, m.priorities.Beep, config.KeyBeepVolume)
			m.state.LastBeepAt -= BeepInterval
		}
		if reset || left <= 0 {
			m.exit(reset)
		}
	}
}

func (m *Machine) enter(now time.Time, red, blue bool) {
	owner := Blue
	if red {
		owner = Red
	}
	if red && blue {
		// ties alternate, starting with red
		m.lastTieRed = !m.lastTieRed
		owner = Blue
		if m.lastTieRed {
			owner = Red
		}
	}

	secs := m.values.Value(config.KeyTimeToAnswer)
	if secs <= 0 {
		secs = defaultSeconds
	}
	window := time.Duration(secs) * time.Second

	m.state = State{
		Phase:      Answering,
		Owner:      owner,
		EnteredAt:  now,
		LastBeepAt: window,
		Window:     window,
	}

	other := Blue
	if owner == Blue {
		other = Red
	}
	m.lamp(m.lamps.SetContestant(owner, true))
	m.lamp(m.lamps.SetContestant(other, false))
	m.play(m.sounds.Start, m.priorities.Start, config.KeyStartVolume)
	m.log.Info("buzzer pressed", "owner", owner.String(), "tie", red && blue, "window", window)
}

func (m *Machine) exit(reset bool) {
	m.log.Info("answer window closed", "owner", m.state.Owner.String(), "reset", reset)
	m.state = State{Phase: Waiting}
	m.lamp(m.lamps.SetContestant(Red, false))
	m.lamp(m.lamps.SetContestant(Blue, false))
	m.play(m.sounds.End, m.priorities.End, config.KeyEndVolume)
}

func (m *Machine) play(path string, priority int, volumeKey string) {
	if path == "" {
		return
	}
	m.player.Submit(playback.Request{
		Path:     path,
		Priority: priority,
		Volume:   m.values.Value(volumeKey),
	})
}

func (m *Machine) lamp(err error) {
	if err != nil {
		m.log.Debug("indicator update failed", "error", err)
	}
}
