package console

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"quizbuzzer/lib/config"
	"quizbuzzer/lib/playback"
)

const minRandomDelay = 5 * time.Second

var randomKeys = []string{config.KeyRandomPeriod, config.KeyRandomAdd, config.KeyRandomEnable}

// RandomSound plays one of a fixed set of clips at a randomized interval
// while rs-enable is set.
type RandomSound struct {
	values   Values
	player   Submitter
	clips    []string
	priority int
	intn     func(n int) int
	log      *slog.Logger

	armed bool
	next  time.Time
}

func NewRandomSound(values Values, player Submitter, clips []string, priority int, log *slog.Logger) *RandomSound {
	if log == nil {
		log = slog.Default()
	}
	return &RandomSound{
		values:   values,
		player:   player,
		clips:    clips,
		priority: priority,
		intn:     rand.IntN,
		log:      log,
	}
}

// Next is when the next clip is due; zero while not armed.
func (r *RandomSound) Next() time.Time {
	if !r.armed {
		return time.Time{}
	}
	return r.next
}

func (r *RandomSound) Update(now time.Time) {
	changed := false
	for _, k := range randomKeys {
		if r.values.HasChanged(k) {
			r.values.ResetHasChanged(k)
			changed = true
		}
	}
	if changed {
		r.log.Info("random sound re-armed after config change")
		r.armed = false
	}

	if r.values.Value(config.KeyRandomEnable) == 0 || len(r.clips) == 0 {
		return
	}
	if r.armed && now.Before(r.next) {
		return
	}

	if r.armed {
		clip := r.clips[r.values.Value(config.KeyRandomSelection)%len(r.clips)]
		r.log.Info("playing random sound", "path", clip)
		r.player.Submit(playback.Request{
			Path:     clip,
			Priority: r.priority,
			Volume:   r.values.Value(config.KeyRandomVolume),
		})
	}

	period := time.Duration(r.values.Value(config.KeyRandomPeriod)) * time.Minute
	var jitter time.Duration
	if add := r.values.Value(config.KeyRandomAdd) * 60 * 1000; add > 0 {
		jitter = time.Duration(r.intn(add)) * time.Millisecond
	}
	delay := max(minRandomDelay, period+jitter)
	r.next = now.Add(delay)
	r.armed = true
	r.log.Info("next random sound scheduled", "in", delay, "period", period, "jitter", jitter)
}
