package panel

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Ladder readings arrive as 14-bit controller pairs; the reading is
// published when the LSB arrives.
const (
	CCNavMSB      = 20
	CCSelectorMSB = 21
	CCNavLSB      = 52
	CCSelectorLSB = 53
)

const (
	NoteRedBuzzer  = 36
	NoteBlueBuzzer = 37
	NoteIdleLamp   = 38
)

type Bank uint8

const (
	BankNav Bank = iota
	BankSelector
)

func (b Bank) String() string {
	if b == BankNav {
		return "nav"
	}
	return "selector"
}

type Event interface {
	String() string
}

type ReadingEvent struct {
	Bank  Bank
	Value int
}

func (e ReadingEvent) String() string {
	return fmt.Sprintf("Ladder %s = %d", e.Bank, e.Value)
}

type BuzzerEvent struct {
	Red     bool
	Pressed bool
}

func (e BuzzerEvent) String() string {
	label := "Blue buzzer"
	if e.Red {
		label = "Red buzzer"
	}
	action := "released"
	if e.Pressed {
		action = "pressed"
	}
	return fmt.Sprintf("%s %s", label, action)
}

func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("panel: no MIDI input port matching %q", substr)
}

func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("panel: no MIDI output port matching %q", substr)
}

// Decoder is not safe for concurrent use; it remembers the last MSB of
// each bank.
type Decoder struct {
	msb [2]uint8
}

func (d *Decoder) Decode(msg midi.Message) Event {
	switch {
	case msg.Is(midi.NoteOnMsg):
		var channel, key, velocity uint8
		msg.GetNoteOn(&channel, &key, &velocity)
		return decodeNote(key, velocity)

	case msg.Is(midi.NoteOffMsg):
		var channel, key, velocity uint8
		msg.GetNoteOff(&channel, &key, &velocity)
		return decodeNote(key, 0)

	case msg.Is(midi.ControlChangeMsg):
		var channel, controller, value uint8
		msg.GetControlChange(&channel, &controller, &value)
		return d.decodeCC(controller, value)
	}
	return nil
}

func decodeNote(key, velocity uint8) Event {
	switch key {
	case NoteRedBuzzer:
		return BuzzerEvent{Red: true, Pressed: velocity > 0}
	case NoteBlueBuzzer:
		return BuzzerEvent{Red: false, Pressed: velocity > 0}
	}
	return nil
}

func (d *Decoder) decodeCC(controller, value uint8) Event {
	switch controller {
	case CCNavMSB:
		d.msb[BankNav] = value
	case CCSelectorMSB:
		d.msb[BankSelector] = value
	case CCNavLSB:
		return ReadingEvent{Bank: BankNav, Value: int(d.msb[BankNav])<<7 | int(value)}
	case CCSelectorLSB:
		return ReadingEvent{Bank: BankSelector, Value: int(d.msb[BankSelector])<<7 | int(value)}
	}
	return nil
}
