package panel

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"quizbuzzer/lib/lockout"
)

type LEDState uint8

const (
	LEDOff LEDState = 0
	LEDOn  LEDState = 127
)

// Output drives the panel lamps.
type Output struct {
	mu   sync.Mutex
	send func(msg midi.Message) error
	idle bool
}

func NewOutput(port drivers.Out) (*Output, error) {
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("panel: open output port: %w", err)
	}
	return &Output{send: send}, nil
}

func (o *Output) SetLED(note uint8, state LEDState) error {
	return o.send(midi.NoteOn(0, note, uint8(state)))
}

func (o *Output) SetContestant(c lockout.Contestant, on bool) error {
	state := LEDOff
	if on {
		state = LEDOn
	}
	switch c {
	case lockout.Red:
		return o.SetLED(NoteRedBuzzer, state)
	case lockout.Blue:
		return o.SetLED(NoteBlueBuzzer, state)
	}
	return fmt.Errorf("panel: no lamp for %s", c)
}

func (o *Output) ToggleIdle() error {
	o.mu.Lock()
	o.idle = !o.idle
	state := LEDOff
	if o.idle {
		state = LEDOn
	}
	o.mu.Unlock()
	return o.SetLED(NoteIdleLamp, state)
}

// Clear switches every lamp off.
func (o *Output) Clear() error {
	o.mu.Lock()
	o.idle = false
	o.mu.Unlock()
	for _, note := range []uint8{NoteRedBuzzer, NoteBlueBuzzer, NoteIdleLamp} {
		if err := o.SetLED(note, LEDOff); err != nil {
			return err
		}
	}
	return nil
}
