package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"quizbuzzer/lib/input"
	"quizbuzzer/lib/lockout"
	"quizbuzzer/lib/panel"
)

// Lights each buzzer lamp while its buzzer is held and prints every
// panel event. The port name defaults to "buzzer".
func main() {
	defer midi.CloseDriver()

	name := "buzzer"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	inPort, err := panel.FindInPort(name)
	if err != nil {
		fmt.Println("Available MIDI input ports:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	outPort, err := panel.FindOutPort(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := panel.NewOutput(outPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Clear()

	fmt.Printf("Listening on: %s\n", inPort)

	p := panel.New(nil)
	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		event := p.Handle(msg)
		if event == nil {
			return
		}

		switch e := event.(type) {
		case panel.ReadingEvent:
			cal := input.NavCalibration
			if e.Bank == panel.BankSelector {
				cal = input.SelectorCalibration
			}
			fmt.Printf("%s (%s)\n", e, cal.Classify(e.Value))

		case panel.BuzzerEvent:
			fmt.Println(e)
			c := lockout.Blue
			if e.Red {
				c = lockout.Red
			}
			if err := out.SetContestant(c, e.Pressed); err != nil {
				fmt.Fprintf(os.Stderr, "Lamp error: %v\n", err)
			}
			if e.Pressed {
				out.ToggleIdle()
			}
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening: %v\n", err)
		os.Exit(1)
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
}
