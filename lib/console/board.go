package console

import (
	"errors"
	"fmt"
	"log/slog"

	"quizbuzzer/lib/config"
	"quizbuzzer/lib/input"
	"quizbuzzer/lib/playback"
	"quizbuzzer/lib/soundboard"
)

// View mirrors the soundboard screen on a display.
type View interface {
	ShowPage(p soundboard.Page, index, count int, prompt string) error
}

// Board is the soundboard screen: paging with LEFT/RIGHT, playing the
// current page's sounds with the selector buttons and quick-access page
// entry toggled with ENTER.
type Board struct {
	values   Values
	player   Submitter
	priority int
	view     View
	log      *slog.Logger

	cat      *soundboard.Catalog
	seq      *soundboard.Sequence
	page     int
	entering bool
	prompt   string
	dirty    bool
}

func NewBoard(values Values, player Submitter, priority int, view View, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{
		values:   values,
		player:   player,
		priority: priority,
		view:     view,
		log:      log,
	}
}

func (b *Board) SetCatalog(cat *soundboard.Catalog) {
	b.cat = cat
	b.seq = soundboard.NewSequence(cat)
	b.page = 0
	b.entering = false
	b.prompt = ""
	b.dirty = true
}

func (b *Board) Catalog() *soundboard.Catalog {
	return b.cat
}

func (b *Board) Page() int {
	return b.page
}

func (b *Board) Entering() bool {
	return b.entering
}

func (b *Board) Prompt() string {
	return b.prompt
}

func (b *Board) Update(f input.Frame) {
	n := b.cat.PageCount()
	if n == 0 {
		return
	}

	if f.Nav.Changed {
		switch f.Nav.Button {
		case input.ButtonLeft:
			b.page = (b.page - 1 + n) % n
			b.dirty = true
		case input.ButtonRight:
			b.page = (b.page + 1) % n
			b.dirty = true
		case input.ButtonEnter:
			b.entering = !b.entering
			b.seq.Reset()
			b.prompt = ""
			if b.entering {
				b.prompt = "go to: " + b.seq.Pressed().String()
			}
			b.dirty = true
		}
	}

	if f.Selector.Changed {
		if slot, ok := input.SelectorIndex(f.Selector.Button); ok {
			if b.entering {
				b.enter(slot)
			} else {
				b.play(slot)
			}
		}
	}

	if b.dirty {
		b.show()
	}
}

func (b *Board) enter(slot int) {
	b.dirty = true
	r, err := b.seq.Press(slot)
	switch {
	case errors.Is(err, soundboard.ErrNoMatch):
		b.log.Debug("quick access miss", "button", slot)
		b.prompt = "no match, go to: " + b.seq.Pressed().String()
	case err != nil:
		b.log.Warn("quick access unavailable", "error", err)
		b.entering = false
		b.prompt = ""
	case r.Single():
		b.page = r.Min
		b.entering = false
		b.prompt = ""
	default:
		b.prompt = fmt.Sprintf("go to: %s %d-%d", b.seq.Pressed(), r.Min+1, r.Max+1)
	}
}

func (b *Board) play(slot int) {
	s, ok := b.cat.Sound(b.page, slot)
	if !ok {
		return
	}
	b.player.Submit(playback.Request{
		Path:     s.Path,
		Priority: b.priority,
		Volume:   b.values.Value(config.KeySoundboardVolume),
	})
}

func (b *Board) show() {
	b.dirty = false
	if b.view == nil {
		return
	}
	p, _ := b.cat.Page(b.page)
	if err := b.view.ShowPage(p, b.page, b.cat.PageCount(), b.prompt); err != nil {
		b.log.Debug("soundboard view update failed", "error", err)
	}
}
