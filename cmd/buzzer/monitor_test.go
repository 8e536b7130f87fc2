package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"quizbuzzer/lib/input"
)

type fakePanel struct{ s input.Sample }

func (p *fakePanel) Sample() input.Sample { return p.s }

func TestMonitorDoesNotLogOverScreen(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	nav, _ := input.NavCalibration.Reading(input.ButtonDown)
	sel, _ := input.SelectorCalibration.Reading(input.ButtonRed)
	src := &fakePanel{input.Sample{Nav: nav, Selector: sel}}

	var m tea.Model = newMonitorModel(src, 10*time.Millisecond, 5*time.Millisecond)
	start := time.Now()
	for i := 0; i <= 4; i++ {
		m, _ = m.Update(tickMsg(start.Add(time.Duration(i) * 5 * time.Millisecond)))
	}
	require.Equal(t, input.ButtonDown, m.(monitorModel).lastNav)
	require.Empty(t, buf.String())
}

func TestMonitorTracksButtons(t *testing.T) {
	nav, _ := input.NavCalibration.Reading(input.ButtonLeft)
	sel, _ := input.SelectorCalibration.Reading(input.ButtonNone)
	src := &fakePanel{input.Sample{Nav: nav, Selector: sel, BlueBuzzer: true}}

	var m tea.Model = newMonitorModel(src, 50*time.Millisecond, 5*time.Millisecond)
	start := time.Now()
	for i := 0; i <= 12; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(tickMsg(start.Add(time.Duration(i) * 5 * time.Millisecond)))
		require.NotNil(t, cmd)
	}

	mm := m.(monitorModel)
	require.Equal(t, input.ButtonLeft, mm.lastNav)
	require.Equal(t, input.ButtonNone, mm.lastSel)
	view := mm.View()
	require.Contains(t, view, "BLUE")
	require.Contains(t, view, input.ButtonLeft.String())
}

func TestMonitorQuits(t *testing.T) {
	m := newMonitorModel(&fakePanel{}, 0, time.Millisecond)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
