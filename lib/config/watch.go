package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the tunables when the file is edited by someone else
// until ctx is done. The directory is watched so editors that replace
// the file on save are seen as well.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		w.Close()
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
				} else {
					timer.Reset(reloadDebounce)
				}
				fire = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("config watch error", "error", err)
			case <-fire:
				fire = nil
				s.reloadFile()
			}
		}
	}()
	return nil
}

func (s *Store) reloadFile() {
	v, err := readViper(s.path)
	if err != nil {
		s.log.Warn("config reload failed", "path", s.path, "error", err)
		return
	}
	if keys := s.reload(v); len(keys) > 0 {
		s.log.Info("config reloaded", "path", s.path, "changed", keys)
	}
}
