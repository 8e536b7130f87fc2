package playback

import "fmt"

const MaxPathLen = 127

// Request asks the worker to play Path. Lower Priority is more urgent.
type Request struct {
	Path     string
	Priority int
	Volume   int
}

func (r Request) String() string {
	return fmt.Sprintf("%s prio=%d vol=%d", r.Path, r.Priority, r.Volume)
}

func (r Request) Gain() float64 {
	return float64(clampVolume(r.Volume)) / 100
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
