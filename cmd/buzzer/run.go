package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"quizbuzzer/lib/config"
	"quizbuzzer/lib/console"
	"quizbuzzer/lib/deck"
	"quizbuzzer/lib/input"
	"quizbuzzer/lib/lockout"
	"quizbuzzer/lib/panel"
	"quizbuzzer/lib/playback"
	"quizbuzzer/lib/soundboard"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the console until interrupted",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func openPanel(settings config.Settings, log *slog.Logger) (*panel.Panel, *panel.Output, func(), error) {
	inPort, err := panel.FindInPort(settings.Panel.Port)
	if err != nil {
		for _, p := range midi.GetInPorts() {
			log.Info("available MIDI input", "port", p.String())
		}
		return nil, nil, nil, err
	}
	outPort, err := panel.FindOutPort(settings.Panel.Port)
	if err != nil {
		return nil, nil, nil, err
	}
	lamps, err := panel.NewOutput(outPort)
	if err != nil {
		return nil, nil, nil, err
	}

	p := panel.New(log)
	stop, err := p.Listen(inPort)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, lamps, stop, nil
}

// openDeck returns a keypad layered over base and a view for the
// soundboard, or base and nil when no deck is attached.
func openDeck(ctx context.Context, settings config.Settings, base console.Panel, log *slog.Logger) (console.Panel, console.View, func()) {
	if !settings.Deck.Enabled {
		return base, nil, func() {}
	}
	dev, err := deck.Open()
	if err != nil {
		log.Warn("deck unavailable", "error", err)
		return base, nil, func() {}
	}
	log.Info("deck connected", "product", dev.Product(), "model", dev.Model().Name)
	if err := dev.SetBrightness(settings.Deck.Brightness); err != nil {
		log.Warn("deck brightness", "error", err)
	}

	pad := deck.NewKeypad(base)
	keys := make(chan deck.KeyEvent, 16)
	go func() {
		defer close(keys)
		if err := dev.ReadKeys(keys); err != nil && ctx.Err() == nil {
			log.Warn("deck input stopped", "error", err)
		}
	}()
	go pad.Feed(keys)

	return pad, deck.NewView(dev), func() { dev.Close() }
}

func runConsole(cmd *cobra.Command, args []string) error {
	store, settings, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer midi.CloseDriver()

	p, lamps, stopPanel, err := openPanel(settings, log)
	if err != nil {
		return err
	}
	defer stopPanel()
	defer lamps.Clear()

	source, view, closeDeck := openDeck(ctx, settings, p, log)
	defer closeDeck()

	out, err := playback.NewCommandOutput()
	if err != nil {
		return err
	}
	log.Info("audio output", "player", out.Command())

	sounds := os.DirFS(settings.SoundRoot)
	catalogs := make(chan *soundboard.Catalog, 1)
	sched := playback.NewScheduler(playback.NewFileOpener(sounds), out,
		playback.WithQueueSize(settings.Timing.QueueSize),
		playback.WithSubmitTimeout(settings.Timing.SubmitTimeout),
		playback.WithMount(func() error {
			_, err := os.Stat(settings.SoundRoot)
			return err
		}, settings.Timing.MountRetry),
		playback.WithOnMounted(func(ctx context.Context) {
			cat, err := soundboard.Build(sounds, settings.SoundboardDir, len(input.Selectors), log)
			if err != nil {
				log.Error("soundboard unavailable", "error", err)
				return
			}
			catalogs <- cat
		}),
		playback.WithLogger(log),
	)

	answers := lockout.New(store, sched, lamps, settings.Sounds, settings.Priorities, lockout.WithLogger(log))
	board := console.NewBoard(store, sched, settings.Priorities.Soundboard, view, log)
	random := console.NewRandomSound(store, sched, settings.Sounds.Random, settings.Priorities.Random, log)
	loop := console.New(source, input.NewInputs(settings.Timing.Debounce, log), answers, board,
		console.WithTick(settings.Timing.Tick),
		console.WithCatalogs(catalogs),
		console.WithRandomSound(random),
		console.WithLogger(log),
	)

	if err := store.Watch(ctx); err != nil {
		log.Warn("config changes will not be picked up", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("playback stopped", "error", err)
		}
	}()

	err = loop.Run(ctx)
	wg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("console: %w", err)
	}
	log.Info("shutting down")
	return nil
}
