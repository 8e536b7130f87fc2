package panel

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"quizbuzzer/lib/input"
	"quizbuzzer/lib/lockout"
)

func reading(cc uint8, v int) []midi.Message {
	msb, lsb := cc, cc+32
	return []midi.Message{
		midi.ControlChange(0, msb, uint8(v>>7)),
		midi.ControlChange(0, lsb, uint8(v&0x7f)),
	}
}

func TestDecodeReadings(t *testing.T) {
	var d Decoder

	msgs := reading(CCNavMSB, 3626)
	require.Nil(t, d.Decode(msgs[0]))
	require.Equal(t, ReadingEvent{Bank: BankNav, Value: 3626}, d.Decode(msgs[1]))

	msgs = reading(CCSelectorMSB, 1643)
	require.Nil(t, d.Decode(msgs[0]))
	ev := d.Decode(msgs[1])
	require.Equal(t, ReadingEvent{Bank: BankSelector, Value: 1643}, ev)
	require.Equal(t, "Ladder selector = 1643", ev.String())

	// an LSB on its own reuses the last MSB of its bank
	require.Equal(t, ReadingEvent{Bank: BankNav, Value: 28<<7 | 5}, d.Decode(midi.ControlChange(0, CCNavLSB, 5)))
}

func TestDecodeBuzzers(t *testing.T) {
	var d Decoder

	require.Equal(t, BuzzerEvent{Red: true, Pressed: true}, d.Decode(midi.NoteOn(0, NoteRedBuzzer, 100)))
	require.Equal(t, BuzzerEvent{Red: true, Pressed: false}, d.Decode(midi.NoteOff(0, NoteRedBuzzer)))
	ev := d.Decode(midi.NoteOn(0, NoteBlueBuzzer, 1))
	require.Equal(t, "Blue buzzer pressed", ev.String())

	require.Nil(t, d.Decode(midi.NoteOn(0, 60, 100)))
	require.Nil(t, d.Decode(midi.ControlChange(0, 7, 100)))
}

func TestPanelSample(t *testing.T) {
	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s := p.Sample()
	require.Equal(t, input.ButtonNone, input.NavCalibration.Classify(s.Nav))
	require.Equal(t, input.ButtonNone, input.SelectorCalibration.Classify(s.Selector))

	for _, m := range reading(CCNavMSB, 1700) {
		p.Handle(m)
	}
	p.Handle(midi.NoteOn(0, NoteBlueBuzzer, 127))

	s = p.Sample()
	require.Equal(t, input.ButtonRight, input.NavCalibration.Classify(s.Nav))
	require.True(t, s.BlueBuzzer)
	require.False(t, s.RedBuzzer)

	p.Handle(midi.NoteOff(0, NoteBlueBuzzer))
	require.False(t, p.Sample().BlueBuzzer)
}

func TestOutputLamps(t *testing.T) {
	var sent []midi.Message
	o := &Output{send: func(msg midi.Message) error {
		sent = append(sent, msg)
		return nil
	}}

	require.NoError(t, o.SetContestant(lockout.Red, true))
	require.NoError(t, o.SetContestant(lockout.Blue, false))
	require.NoError(t, o.ToggleIdle())
	require.NoError(t, o.ToggleIdle())
	require.Error(t, o.SetContestant(lockout.Nobody, true))

	require.Equal(t, []midi.Message{
		midi.NoteOn(0, NoteRedBuzzer, 127),
		midi.NoteOn(0, NoteBlueBuzzer, 0),
		midi.NoteOn(0, NoteIdleLamp, 127),
		midi.NoteOn(0, NoteIdleLamp, 0),
	}, sent)
}

func TestOutputSendError(t *testing.T) {
	o := &Output{send: func(midi.Message) error { return errors.New("unplugged") }}
	require.Error(t, o.ToggleIdle())
	require.Error(t, o.Clear())
}
