package input

import (
	"log/slog"
	"time"
)

// Sample is one raw reading of the whole console.
type Sample struct {
	Nav        int
	Selector   int
	RedBuzzer  bool
	BlueBuzzer bool
}

type Frame struct {
	Sample
	Nav      Event
	Selector Event
}

// Inputs runs one filter per bank.
type Inputs struct {
	nav      *Filter
	selector *Filter
	log      *slog.Logger
}

func NewInputs(acceptAfter time.Duration, log *slog.Logger) *Inputs {
	if log == nil {
		log = slog.Default()
	}
	return &Inputs{
		nav:      NewFilter(NavCalibration, acceptAfter),
		selector: NewFilter(SelectorCalibration, acceptAfter),
		log:      log,
	}
}

func (in *Inputs) Update(now time.Time, s Sample) Frame {
	prevNav := in.nav.Accepted()
	prevSel := in.selector.Accepted()

	f := Frame{
		Sample:   s,
		Nav:      in.nav.Update(now, s.Nav),
		Selector: in.selector.Update(now, s.Selector),
	}
	if f.Nav.Changed {
		in.log.Debug("nav button", "transition", prevNav.String()+"->"+f.Nav.Button.String())
	}
	if f.Selector.Changed {
		in.log.Debug("selector button", "transition", prevSel.String()+"->"+f.Selector.Button.String())
	}
	return f
}
