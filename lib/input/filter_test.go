package input

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const tick = 5 * time.Millisecond

func TestClassify(t *testing.T) {
	tests := []struct {
		reading int
		want    Button
	}{
		{3626, ButtonNone},
		{2384, ButtonUp},
		{2300, ButtonUp},
		{150, ButtonLeft},
		{10, ButtonLeft},
		{0, ButtonNone},
		{471, ButtonDown},
		{1012, ButtonEnter},
		{1760, ButtonRight},
		{3000, ButtonNone},
		{1356, ButtonNone},
	}
	for _, tt := range tests {
		if got := NavCalibration.Classify(tt.reading); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.reading, got, tt.want)
		}
	}
}

func TestClassifyPicksNearest(t *testing.T) {
	cal := Calibration{
		References: []Reference{
			{ButtonYellow, 1000},
			{ButtonRed, 1200},
		},
		Tolerance: Tolerance,
	}
	require.Equal(t, ButtonRed, cal.Classify(1110))
	require.Equal(t, ButtonYellow, cal.Classify(1090))
}

func TestFilterAcceptsOnlyStableReadings(t *testing.T) {
	window := 50 * time.Millisecond
	rapid.Check(t, func(t *rapid.T) {
		refs := SelectorCalibration.References
		f := NewFilter(SelectorCalibration, window)
		now := time.Unix(1000, 0)

		var held Button
		var heldSince time.Time
		holds := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 30).Draw(t, "holds")
		for i, n := range holds {
			ref := refs[rapid.IntRange(0, len(refs)-1).Draw(t, "ref")]
			jitter := rapid.IntRange(-Tolerance+1, Tolerance-1).Draw(t, "jitter")
			if i == 0 || ref.Button != held {
				held = ref.Button
				heldSince = now
			}
			for range n {
				ev := f.Update(now, ref.Reading+jitter)
				if ev.Changed {
					if ev.Button != held {
						t.Fatalf("accepted %s while %s is held", ev.Button, held)
					}
					if now.Sub(heldSince) < window {
						t.Fatalf("accepted %s after %s", ev.Button, now.Sub(heldSince))
					}
				}
				now = now.Add(tick)
			}
		}
	})
}

func TestFilterRejectsShortPress(t *testing.T) {
	f := NewFilter(SelectorCalibration, 50*time.Millisecond)
	start := time.Unix(1000, 0)
	idle, _ := SelectorCalibration.Reading(ButtonNone)
	red, _ := SelectorCalibration.Reading(ButtonRed)

	now := start
	for i := 0; i < 20; i++ {
		f.Update(now, idle)
		now = now.Add(tick)
	}
	// 45 ms of red is below the window
	for i := 0; i < 9; i++ {
		ev := f.Update(now, red)
		require.Equal(t, ButtonNone, ev.Button)
		require.False(t, ev.Changed)
		now = now.Add(tick)
	}
	for i := 0; i < 20; i++ {
		ev := f.Update(now, idle)
		require.Equal(t, ButtonNone, ev.Button)
		require.False(t, ev.Changed)
		now = now.Add(tick)
	}
}

func TestFilterAcceptsHeldPressOnce(t *testing.T) {
	f := NewFilter(SelectorCalibration, 50*time.Millisecond)
	start := time.Unix(1000, 0)
	red, _ := SelectorCalibration.Reading(ButtonRed)

	changes := 0
	var changedAt time.Duration
	for i := 0; i <= 40; i++ {
		elapsed := time.Duration(i) * tick
		ev := f.Update(start.Add(elapsed), red)
		if ev.Changed {
			changes++
			changedAt = elapsed
			require.Equal(t, ButtonRed, ev.Button)
		}
	}
	require.Equal(t, 1, changes)
	require.Equal(t, 50*time.Millisecond, changedAt)
	require.Equal(t, ButtonRed, f.Accepted())
}

func TestFilterRelease(t *testing.T) {
	f := NewFilter(NavCalibration, 50*time.Millisecond)
	now := time.Unix(1000, 0)
	enter, _ := NavCalibration.Reading(ButtonEnter)
	idle, _ := NavCalibration.Reading(ButtonNone)

	for i := 0; i < 20; i++ {
		f.Update(now, enter)
		now = now.Add(tick)
	}
	require.Equal(t, ButtonEnter, f.Accepted())

	var last Event
	for i := 0; i < 20; i++ {
		ev := f.Update(now, idle)
		if ev.Changed {
			last = ev
		}
		now = now.Add(tick)
	}
	require.Equal(t, Event{Button: ButtonNone, Changed: true}, last)
}

func TestFiltersAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]Button, len(Selectors))
	for i, b := range Selectors {
		wg.Add(1)
		go func(i int, b Button) {
			defer wg.Done()
			f := NewFilter(SelectorCalibration, 50*time.Millisecond)
			reading, _ := SelectorCalibration.Reading(b)
			now := time.Unix(1000, 0)
			for j := 0; j < 30; j++ {
				f.Update(now, reading)
				now = now.Add(tick)
			}
			results[i] = f.Accepted()
		}(i, b)
	}
	wg.Wait()
	require.Equal(t, Selectors, results)
}

func TestInputsFrame(t *testing.T) {
	in := NewInputs(50*time.Millisecond, nil)
	navIdle, _ := NavCalibration.Reading(ButtonNone)
	right, _ := NavCalibration.Reading(ButtonRight)
	blue, _ := SelectorCalibration.Reading(ButtonBlue)

	now := time.Unix(1000, 0)
	var sawRight, sawBlue bool
	for i := 0; i < 20; i++ {
		s := Sample{Nav: navIdle, Selector: blue, RedBuzzer: true}
		if i >= 5 {
			s.Nav = right
		}
		fr := in.Update(now, s)
		require.True(t, fr.RedBuzzer)
		if fr.Nav.Changed {
			sawRight = fr.Nav.Button == ButtonRight
		}
		if fr.Selector.Changed {
			sawBlue = fr.Selector.Button == ButtonBlue
		}
		now = now.Add(tick)
	}
	require.True(t, sawRight)
	require.True(t, sawBlue)
}

func TestSelectorIndex(t *testing.T) {
	i, ok := SelectorIndex(ButtonGreen)
	require.True(t, ok)
	require.Equal(t, 3, i)

	_, ok = SelectorIndex(ButtonEnter)
	require.False(t, ok)
}
