package console

import (
	"context"
	"log/slog"
	"time"

	"quizbuzzer/lib/input"
	"quizbuzzer/lib/lockout"
	"quizbuzzer/lib/playback"
	"quizbuzzer/lib/soundboard"
)

const DefaultTick = 5 * time.Millisecond

// Panel supplies the latest raw readings without blocking.
type Panel interface {
	Sample() input.Sample
}

type Submitter interface {
	Submit(r playback.Request) bool
}

type Values interface {
	Value(key string) int
	HasChanged(key string) bool
	ResetHasChanged(key string)
}

// Status is what the console saw and decided on the last tick.
type Status struct {
	At     time.Time
	Sample input.Sample
	Frame  input.Frame
	Answer lockout.State
	Page   int
	Pages  int
	Prompt string
}

// Console is the single polling loop. Everything it calls returns
// immediately; storage and audio are left to the playback worker.
type Console struct {
	panel    Panel
	inputs   *input.Inputs
	answers  *lockout.Machine
	board    *Board
	random   *RandomSound
	catalogs <-chan *soundboard.Catalog
	tick     time.Duration
	status   func(Status)
	log      *slog.Logger
}

type Option func(*Console)

func WithTick(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithCatalogs hands catalogs built elsewhere to the soundboard screen.
func WithCatalogs(ch <-chan *soundboard.Catalog) Option {
	return func(c *Console) {
		c.catalogs = ch
	}
}

func WithRandomSound(r *RandomSound) Option {
	return func(c *Console) {
		c.random = r
	}
}

// WithStatus calls fn at the end of every tick.
func WithStatus(fn func(Status)) Option {
	return func(c *Console) {
		c.status = fn
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Console) {
		if log != nil {
			c.log = log
		}
	}
}

func New(panel Panel, inputs *input.Inputs, answers *lockout.Machine, board *Board, opts ...Option) *Console {
	c := &Console{
		panel:   panel,
		inputs:  inputs,
		answers: answers,
		board:   board,
		tick:    DefaultTick,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) Run(ctx context.Context) error {
	t := time.NewTicker(c.tick)
	defer t.Stop()
	c.log.Info("console running", "tick", c.tick)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			c.Step(now)
		}
	}
}

// Step runs one tick of the loop.
func (c *Console) Step(now time.Time) {
	s := c.panel.Sample()
	f := c.inputs.Update(now, s)

	reset := f.Nav.Changed && f.Nav.Button == input.ButtonDown
	c.answers.Update(now, s.RedBuzzer, s.BlueBuzzer, reset)

	select {
	case cat, ok := <-c.catalogs:
		if !ok {
			c.catalogs = nil
			break
		}
		c.log.Info("soundboard ready", "pages", cat.PageCount())
		c.board.SetCatalog(cat)
	default:
	}
	c.board.Update(f)

	if c.random != nil {
		c.random.Update(now)
	}

	if c.status != nil {
		c.status(Status{
			At:     now,
			Sample: s,
			Frame:  f,
			Answer: c.answers.State(),
			Page:   c.board.Page(),
			Pages:  c.board.Catalog().PageCount(),
			Prompt: c.board.Prompt(),
		})
	}
}
