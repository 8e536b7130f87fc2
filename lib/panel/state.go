package panel

import (
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"quizbuzzer/lib/input"
)

// Panel keeps the latest reading of every control. MIDI callbacks write
// it, the polling loop reads it with Sample.
type Panel struct {
	mu     sync.Mutex
	dec    Decoder
	sample input.Sample
	log    *slog.Logger
}

func New(log *slog.Logger) *Panel {
	if log == nil {
		log = slog.Default()
	}
	nav, _ := input.NavCalibration.Reading(input.ButtonNone)
	sel, _ := input.SelectorCalibration.Reading(input.ButtonNone)
	return &Panel{
		sample: input.Sample{Nav: nav, Selector: sel},
		log:    log,
	}
}

func (p *Panel) Sample() input.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sample
}

// Handle applies one MIDI message and returns the decoded event, if any.
func (p *Panel) Handle(msg midi.Message) Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	event := p.dec.Decode(msg)
	switch e := event.(type) {
	case ReadingEvent:
		if e.Bank == BankNav {
			p.sample.Nav = e.Value
		} else {
			p.sample.Selector = e.Value
		}
	case BuzzerEvent:
		if e.Red {
			p.sample.RedBuzzer = e.Pressed
		} else {
			p.sample.BlueBuzzer = e.Pressed
		}
		p.log.Debug("panel", "event", e.String())
	}
	return event
}

// Listen feeds port into the panel until stop is called.
func (p *Panel) Listen(port drivers.In) (stop func(), err error) {
	stop, err = midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		p.Handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("panel: listen %s: %w", port, err)
	}
	p.log.Info("panel listening", "port", port.String())
	return stop, nil
}
