package deck

import (
	"sync"

	"quizbuzzer/lib/input"
)

type Source interface {
	Sample() input.Sample
}

// Keypad lets deck keys stand in for panel buttons. A held key replaces
// its bank's reading with that button's calibration reference, so it is
// debounced exactly like the hardware ladder.
type Keypad struct {
	base Source

	mu       sync.Mutex
	selector input.Button
	nav      input.Button
}

func NewKeypad(base Source) *Keypad {
	return &Keypad{base: base, selector: input.ButtonNone, nav: input.ButtonNone}
}

func keyButton(key int) (input.Button, bool) {
	switch {
	case key >= 0 && key < len(input.Selectors):
		return input.Selectors[key], false
	case key == KeyPrevPage:
		return input.ButtonLeft, true
	case key == KeyNextPage:
		return input.ButtonRight, true
	}
	return input.ButtonNone, false
}

func (k *Keypad) Handle(ev KeyEvent) {
	b, nav := keyButton(ev.Key)
	if b == input.ButtonNone {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	held := &k.selector
	if nav {
		held = &k.nav
	}
	switch {
	case ev.Pressed:
		*held = b
	case *held == b:
		*held = input.ButtonNone
	}
}

func (k *Keypad) Sample() input.Sample {
	s := k.base.Sample()
	k.mu.Lock()
	defer k.mu.Unlock()
	if r, ok := input.SelectorCalibration.Reading(k.selector); ok && k.selector != input.ButtonNone {
		s.Selector = r
	}
	if r, ok := input.NavCalibration.Reading(k.nav); ok && k.nav != input.ButtonNone {
		s.Nav = r
	}
	return s
}

// Feed applies events until ch is closed.
func (k *Keypad) Feed(ch <-chan KeyEvent) {
	for ev := range ch {
		k.Handle(ev)
	}
}
