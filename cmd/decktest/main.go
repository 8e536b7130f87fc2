package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quizbuzzer/lib/deck"
	"quizbuzzer/lib/input"
	"quizbuzzer/lib/soundboard"
)

// Usage: decktest [sound root] [soundboard dir]
func main() {
	root, dir := "/media/buzzer", "soundboard"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cat, err := soundboard.Build(os.DirFS(root), dir, len(input.Selectors), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cat.PageCount() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no soundboard pages")
		os.Exit(1)
	}

	dev, err := deck.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	fmt.Printf("Connected to: %s %s (serial: %s)\n", dev.Product(), dev.Model().Name, dev.SerialNumber())
	dev.SetBrightness(80)

	view := deck.NewView(dev)
	page := 0
	show := func() {
		p, _ := cat.Page(page)
		if err := view.ShowPage(p, page, cat.PageCount(), ""); err != nil {
			fmt.Fprintf(os.Stderr, "Draw error: %v\n", err)
		}
		fmt.Printf("Page %d/%d %s\n", page+1, cat.PageCount(), p.Name)
	}
	show()

	keys := make(chan deck.KeyEvent, 64)
	go func() {
		if err := dev.ReadKeys(keys); err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case ev := <-keys:
			if !ev.Pressed {
				continue
			}
			switch {
			case ev.Key == deck.KeyPrevPage:
				page = (page + cat.PageCount() - 1) % cat.PageCount()
				show()
			case ev.Key == deck.KeyNextPage:
				page = (page + 1) % cat.PageCount()
				show()
			case ev.Key < soundboard.FilesPerPage:
				s, _ := cat.Sound(page, ev.Key)
				if s.Empty() {
					fmt.Printf("Key %d: no sound\n", ev.Key)
				} else {
					fmt.Printf("Key %d: %s (%s)\n", ev.Key, s.Description(), s.Path)
				}
			default:
				fmt.Printf("Key %d\n", ev.Key)
			}
		case <-sig:
			fmt.Println()
			return
		}
	}
}
