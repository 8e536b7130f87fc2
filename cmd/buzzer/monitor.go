package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"quizbuzzer/lib/console"
	"quizbuzzer/lib/input"
	"quizbuzzer/lib/panel"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show live panel readings and debounced buttons",
	Long: `Shows the raw ladder readings, the button each one classifies as, the
debounced button and both buzzers. Useful when calibrating a panel.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("245"))
	idleStyle  = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("240"))
	redStyle   = idleStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160"))
	blueStyle  = idleStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27"))
	helpStyle  = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("240"))
)

type tickMsg time.Time

type monitorModel struct {
	source console.Panel
	inputs *input.Inputs
	tick   time.Duration

	frame   input.Frame
	lastNav input.Button
	lastSel input.Button
}

// The alt screen owns the terminal, so nothing below the monitor logs.
var quietLog = slog.New(slog.DiscardHandler)

func newMonitorModel(source console.Panel, debounce, tick time.Duration) monitorModel {
	return monitorModel{
		source: source,
		inputs: input.NewInputs(debounce, quietLog),
		tick:   tick,
	}
}

func (m monitorModel) next() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m monitorModel) Init() tea.Cmd {
	return m.next()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.frame = m.inputs.Update(time.Time(msg), m.source.Sample())
		if m.frame.Nav.Changed {
			m.lastNav = m.frame.Nav.Button
		}
		if m.frame.Selector.Changed {
			m.lastSel = m.frame.Selector.Button
		}
		return m, m.next()
	}
	return m, nil
}

func bankLine(label string, raw int, cal input.Calibration, ev input.Event) string {
	return labelStyle.Render(label) + fmt.Sprintf("%5d  %-7s %-7s", raw, cal.Classify(raw), ev.Button)
}

func (m monitorModel) View() string {
	s := m.frame.Sample
	var b strings.Builder
	b.WriteString(titleStyle.Render("Buzzer panel monitor"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("") + "  raw  reads   accepted\n")
	b.WriteString(bankLine("nav", s.Nav, input.NavCalibration, m.frame.Nav) + "\n")
	b.WriteString(bankLine("selector", s.Selector, input.SelectorCalibration, m.frame.Selector) + "\n\n")

	red, blue := idleStyle.Render("RED"), idleStyle.Render("BLUE")
	if s.RedBuzzer {
		red = redStyle.Render("RED")
	}
	if s.BlueBuzzer {
		blue = blueStyle.Render("BLUE")
	}
	b.WriteString(labelStyle.Render("buzzers") + red + " " + blue + "\n")
	b.WriteString(labelStyle.Render("last") + fmt.Sprintf("%s / %s", m.lastNav, m.lastSel))
	b.WriteString(helpStyle.Render("q to quit"))
	return b.String() + "\n"
}

func runMonitor(cmd *cobra.Command, args []string) error {
	_, settings, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer midi.CloseDriver()

	inPort, err := panel.FindInPort(settings.Panel.Port)
	if err != nil {
		return err
	}
	p := panel.New(quietLog)
	stop, err := p.Listen(inPort)
	if err != nil {
		return err
	}
	defer stop()

	_, err = tea.NewProgram(newMonitorModel(p, settings.Timing.Debounce, settings.Timing.Tick), tea.WithAltScreen()).Run()
	return err
}
