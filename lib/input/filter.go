package input

import (
	"fmt"
	"time"
)

const DefaultAcceptAfter = 50 * time.Millisecond

type Event struct {
	Button  Button
	Changed bool
}

func (e Event) String() string {
	if e.Changed {
		return fmt.Sprintf("%s (changed)", e.Button)
	}
	return e.Button.String()
}

// Filter debounces one bank. A classification becomes the accepted
// button once it has been stable for the accept window.
type Filter struct {
	cal         Calibration
	acceptAfter time.Duration

	current  Button
	since    time.Time
	accepted Button
}

func NewFilter(cal Calibration, acceptAfter time.Duration) *Filter {
	if acceptAfter <= 0 {
		acceptAfter = DefaultAcceptAfter
	}
	return &Filter{cal: cal, acceptAfter: acceptAfter}
}

func (f *Filter) Update(now time.Time, reading int) Event {
	btn := f.cal.Classify(reading)
	if btn != f.current || f.since.IsZero() {
		f.current = btn
		f.since = now
	}

	prev := f.accepted
	if now.Sub(f.since) >= f.acceptAfter {
		f.accepted = f.current
	}
	return Event{Button: f.accepted, Changed: f.accepted != prev}
}

func (f *Filter) Accepted() Button {
	return f.accepted
}
