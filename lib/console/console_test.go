package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"quizbuzzer/lib/config"
	"quizbuzzer/lib/input"
	"quizbuzzer/lib/lockout"
	"quizbuzzer/lib/playback"
	"quizbuzzer/lib/soundboard"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeValues struct {
	values  map[string]int
	changed map[string]bool
}

func newFakeValues() *fakeValues {
	v := &fakeValues{values: map[string]int{}, changed: map[string]bool{}}
	for _, d := range config.Definitions {
		v.values[d.Key] = d.Default
	}
	return v
}

func (v *fakeValues) Value(key string) int { return v.values[key] }

func (v *fakeValues) HasChanged(key string) bool { return v.changed[key] }

func (v *fakeValues) ResetHasChanged(key string) { delete(v.changed, key) }

func (v *fakeValues) set(key string, value int) {
	v.values[key] = value
	v.changed[key] = true
}

type fakePlayer struct {
	mu  sync.Mutex
	got []playback.Request
}

func (p *fakePlayer) Submit(r playback.Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, r)
	return true
}

func (p *fakePlayer) paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, r := range p.got {
		out = append(out, r.Path)
	}
	return out
}

type fakePanel struct {
	mu sync.Mutex
	s  input.Sample
}

func (p *fakePanel) Sample() input.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}

func (p *fakePanel) set(fn func(*input.Sample)) {
	p.mu.Lock()
	fn(&p.s)
	p.mu.Unlock()
}

type fakeLamps struct{}

func (fakeLamps) SetContestant(lockout.Contestant, bool) error { return nil }
func (fakeLamps) ToggleIdle() error { return nil }

type fakeView struct {
	shown []string
}

func (v *fakeView) ShowPage(p soundboard.Page, index, count int, prompt string) error {
	v.shown = append(v.shown, fmt.Sprintf("%d/%d %s %s", index+1, count, p.Name, prompt))
	return nil
}

type rig struct {
	c      *Console
	panel  *fakePanel
	player *fakePlayer
	values *fakeValues
	view   *fakeView
	cats   chan *soundboard.Catalog
	now    time.Time
}

var prio = config.PrioritySet{Start: 2, Beep: 2, End: 2, Soundboard: 1, Random: 3}

func setupConsole(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		panel:  &fakePanel{},
		player: &fakePlayer{},
		values: newFakeValues(),
		view:   &fakeView{},
		cats:   make(chan *soundboard.Catalog, 1),
		now:    time.Unix(5000, 0),
	}
	r.panel.s = idle()

	inputs := input.NewInputs(input.DefaultAcceptAfter, quiet)
	sounds := config.SoundSettings{Start: "start.wav", Beep: "beep.wav", End: "end.wav"}
	answers := lockout.New(r.values, r.player, fakeLamps{}, sounds, prio, lockout.WithLogger(quiet))
	board := NewBoard(r.values, r.player, prio.Soundboard, r.view, quiet)
	r.c = New(r.panel, inputs, answers, board, WithCatalogs(r.cats), WithLogger(quiet))
	return r
}

func idle() input.Sample {
	nav, _ := input.NavCalibration.Reading(input.ButtonNone)
	sel, _ := input.SelectorCalibration.Reading(input.ButtonNone)
	return input.Sample{Nav: nav, Selector: sel}
}

func (r *rig) run(d time.Duration) {
	for end := r.now.Add(d); r.now.Before(end); {
		r.now = r.now.Add(DefaultTick)
		r.c.Step(r.now)
	}
}

// press holds b long enough to be accepted, then releases it.
func (r *rig) press(b input.Button) {
	if reading, ok := input.NavCalibration.Reading(b); ok {
		r.panel.set(func(s *input.Sample) { s.Nav = reading })
	} else {
		reading, _ := input.SelectorCalibration.Reading(b)
		r.panel.set(func(s *input.Sample) { s.Selector = reading })
	}
	r.run(60 * time.Millisecond)
	r.panel.set(func(s *input.Sample) { *s = idle() })
	r.run(60 * time.Millisecond)
}

func testCatalog(t *testing.T, pages int) *soundboard.Catalog {
	t.Helper()
	addrs, err := soundboard.AssignAddresses(pages, len(input.Selectors))
	require.NoError(t, err)
	cat := &soundboard.Catalog{Pages: make([]soundboard.Page, pages), Buttons: len(input.Selectors), Addressable: true}
	for i := range cat.Pages {
		cat.Pages[i].Name = fmt.Sprintf("p%d", i+1)
		cat.Pages[i].Address = addrs[i]
	}
	return cat
}

func withSound(t *testing.T, cat *soundboard.Catalog, page int, name string) {
	t.Helper()
	fsys := fstest.MapFS{"sb/1_x/" + name: {Data: []byte("x")}}
	built, err := soundboard.Build(fsys, "sb", 6, quiet)
	require.NoError(t, err)
	cat.Pages[page].Sounds = built.Pages[0].Sounds
}

func TestBuzzerAndReset(t *testing.T) {
	r := setupConsole(t)

	r.panel.set(func(s *input.Sample) { s.BlueBuzzer = true })
	r.run(DefaultTick)
	r.panel.set(func(s *input.Sample) { s.BlueBuzzer = false })
	require.Equal(t, []string{"start.wav"}, r.player.paths())

	r.press(input.ButtonDown)
	require.Equal(t, []string{"start.wav", "end.wav"}, r.player.paths())
}

func TestSoundboardPagingAndPlayback(t *testing.T) {
	r := setupConsole(t)

	// nothing to page through before the catalog arrives
	r.press(input.ButtonRight)
	require.Empty(t, r.view.shown)

	cat := testCatalog(t, 3)
	withSound(t, cat, 1, "2_Applause.wav")
	r.cats <- cat
	r.run(DefaultTick)
	require.Equal(t, []string{"1/3 p1 "}, r.view.shown)

	r.press(input.ButtonLeft)
	require.Equal(t, 2, r.c.board.Page())
	r.press(input.ButtonRight)
	r.press(input.ButtonRight)
	require.Equal(t, 1, r.c.board.Page())

	r.values.values[config.KeySoundboardVolume] = 80
	r.press(input.ButtonRed)
	r.press(input.ButtonYellow)
	require.Len(t, r.player.got, 1)
	require.Equal(t, playback.Request{Path: "sb/1_x/2_Applause.wav", Priority: 1, Volume: 80}, r.player.got[0])
}

func TestQuickAccessEntry(t *testing.T) {
	r := setupConsole(t)
	r.cats <- testCatalog(t, 10)
	r.run(DefaultTick)

	r.press(input.ButtonEnter)
	require.True(t, r.c.board.Entering())
	require.Equal(t, "go to: [-,-]", r.c.board.Prompt())

	// index 5 is the blue button: pages 6..10
	r.press(input.ButtonBlue)
	require.Equal(t, "go to: [5,-] 6-10", r.c.board.Prompt())
	r.press(input.ButtonGreen)
	require.False(t, r.c.board.Entering())
	require.Equal(t, 8, r.c.board.Page())

	r.press(input.ButtonEnter)
	r.press(input.ButtonBlue)
	r.press(input.ButtonBlue)
	require.True(t, r.c.board.Entering())
	require.Equal(t, "no match, go to: [-,-]", r.c.board.Prompt())

	r.press(input.ButtonBlack)
	require.False(t, r.c.board.Entering())
	require.Equal(t, 2, r.c.board.Page())
	require.Empty(t, r.player.got)

	require.Equal(t, "3/10 p3 ", r.view.shown[len(r.view.shown)-1])
}

func TestEnterTogglesEntryOff(t *testing.T) {
	r := setupConsole(t)
	r.cats <- testCatalog(t, 10)
	r.run(DefaultTick)

	r.press(input.ButtonEnter)
	r.press(input.ButtonBlue)
	r.press(input.ButtonEnter)
	require.False(t, r.c.board.Entering())
	require.Empty(t, r.c.board.Prompt())

	// next entry starts from scratch
	r.press(input.ButtonEnter)
	r.press(input.ButtonWhite)
	require.Equal(t, 4, r.c.board.Page())
}

func TestRandomSound(t *testing.T) {
	values := newFakeValues()
	player := &fakePlayer{}
	rs := NewRandomSound(values, player, []string{"a.wav", "b.wav"}, 3, quiet)
	rs.intn = func(n int) int { return n / 2 }

	start := time.Unix(0, 0)
	rs.Update(start)
	require.True(t, rs.Next().IsZero(), "disabled")

	values.set(config.KeyRandomEnable, 1)
	values.values[config.KeyRandomPeriod] = 1
	values.values[config.KeyRandomAdd] = 2
	values.values[config.KeyRandomSelection] = 3
	values.values[config.KeyRandomVolume] = 55

	rs.Update(start)
	require.Empty(t, player.got, "arming does not play")
	require.Equal(t, start.Add(2*time.Minute), rs.Next())

	rs.Update(start.Add(time.Minute))
	require.Empty(t, player.got)

	rs.Update(start.Add(2 * time.Minute))
	require.Equal(t, []playback.Request{{Path: "b.wav", Priority: 3, Volume: 55}}, player.got)
	require.Equal(t, start.Add(4*time.Minute), rs.Next())

	// a config change re-arms without playing
	values.set(config.KeyRandomPeriod, 0)
	values.set(config.KeyRandomAdd, 0)
	rs.Update(start.Add(5 * time.Minute))
	require.Len(t, player.got, 1)
	require.Equal(t, start.Add(5*time.Minute+minRandomDelay), rs.Next())
	require.False(t, values.HasChanged(config.KeyRandomPeriod))
}

func TestRunStopsOnCancel(t *testing.T) {
	r := setupConsole(t)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	ticks := 0
	r.c.status = func(Status) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}

	errc := make(chan error, 1)
	go func() { errc <- r.c.Run(ctx) }()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 3
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
}
