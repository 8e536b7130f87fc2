package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

const (
	DefaultQueueSize     = 2
	DefaultSubmitTimeout = 20 * time.Millisecond
	DefaultMountRetry    = 100 * time.Millisecond
)

// Scheduler owns the output device. Producers Submit from any goroutine;
// a single worker started with Run plays one request at a time.
//
// While a sound plays the worker polls the queue once per frame:
//   - the same path again stops playback
//   - an equal or more urgent request replaces the current sound
//   - a less urgent request is discarded
type Scheduler struct {
	queue   chan Request
	opener  Opener
	out     Output
	timeout time.Duration

	mounted    func() error
	mountRetry time.Duration
	onMounted  func(context.Context)

	log *slog.Logger
}

type Option func(*Scheduler)

func WithQueueSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.queue = make(chan Request, n)
		}
	}
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMount makes Run wait until check succeeds before touching storage.
func WithMount(check func() error, retry time.Duration) Option {
	return func(s *Scheduler) {
		s.mounted = check
		if retry > 0 {
			s.mountRetry = retry
		}
	}
}

// WithOnMounted runs fn once on the worker after storage is available.
func WithOnMounted(fn func(context.Context)) Option {
	return func(s *Scheduler) {
		s.onMounted = fn
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

func NewScheduler(opener Opener, out Output, opts ...Option) *Scheduler {
	s := &Scheduler{
		queue:      make(chan Request, DefaultQueueSize),
		opener:     opener,
		out:        out,
		timeout:    DefaultSubmitTimeout,
		mountRetry: DefaultMountRetry,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit queues r for the worker. It waits at most the submit timeout
// and reports whether the request was accepted; there is no other
// acknowledgment.
func (s *Scheduler) Submit(r Request) bool {
	if r.Volume <= 0 {
		return false
	}
	r.Volume = clampVolume(r.Volume)
	if r.Path == "" || len(r.Path) > MaxPathLen {
		s.log.Warn("playback request dropped: bad path", "path", r.Path)
		return false
	}

	select {
	case s.queue <- r:
		return true
	default:
	}

	t := time.NewTimer(s.timeout)
	defer t.Stop()
	select {
	case s.queue <- r:
		return true
	case <-t.C:
		s.log.Warn("playback request dropped: queue full", "path", r.Path, "priority", r.Priority)
		return false
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.waitMounted(ctx); err != nil {
		return err
	}
	if s.onMounted != nil {
		s.onMounted(ctx)
	}

	for {
		var req Request
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req = <-s.queue:
		}

		pending := &req
		for pending != nil {
			pending = s.play(ctx, *pending)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Scheduler) waitMounted(ctx context.Context) error {
	if s.mounted == nil {
		return nil
	}
	for {
		err := s.mounted()
		if err == nil {
			s.log.Info("sound storage mounted")
			return nil
		}
		s.log.Warn("sound storage not mounted", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.mountRetry):
		}
	}
}

// play runs r until it ends, is stopped, or is replaced. The replacing
// request is returned so Run starts it next.
func (s *Scheduler) play(ctx context.Context, r Request) *Request {
	src, err := s.opener.Open(r.Path)
	if err != nil {
		s.log.Error("playback open failed", "path", r.Path, "error", err)
		return nil
	}
	defer src.Close()

	format := src.Format()
	if err := s.out.Start(format, r.Gain()); err != nil {
		s.log.Error("playback start failed", "path", r.Path, "error", err)
		return nil
	}
	s.log.Debug("playback started", "request", r.String(), "format", format.String())

	channels := format.Channels
	if channels < 1 {
		channels = 1
	}
	buf := make([]int, FrameLen*channels)

	for {
		select {
		case <-ctx.Done():
			s.out.Stop()
			return nil
		case next := <-s.queue:
			if stop, replace := s.arbitrate(r, next); stop {
				return replace
			}
		default:
		}

		n, err := src.ReadFrame(buf)
		if n > 0 {
			if werr := s.out.WriteFrame(buf[:n]); werr != nil {
				s.log.Error("playback write failed", "path", r.Path, "error", werr)
				s.out.Stop()
				return nil
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Error("playback decode failed", "path", r.Path, "error", err)
				s.out.Stop()
				return nil
			}
			return s.drain(ctx, r)
		}
	}
}

// drain waits for the output to play its buffered audio while still
// arbitrating new requests against r.
func (s *Scheduler) drain(ctx context.Context, r Request) *Request {
	done := s.out.Drain()
	for {
		select {
		case <-ctx.Done():
			s.out.Stop()
			return nil
		case next := <-s.queue:
			if stop, replace := s.arbitrate(r, next); stop {
				return replace
			}
		case err := <-done:
			if err != nil {
				s.log.Debug("playback drain", "path", r.Path, "error", err)
			}
			s.log.Debug("playback finished", "path", r.Path)
			return nil
		}
	}
}

// arbitrate applies next against the playing request r. When stop is
// true the output has been stopped and replace, if set, plays next.
func (s *Scheduler) arbitrate(r, next Request) (stop bool, replace *Request) {
	switch {
	case next.Path == r.Path:
		s.log.Debug("playback stopped by repeat request", "path", r.Path)
		s.out.Stop()
		return true, nil
	case next.Priority <= r.Priority:
		s.log.Debug("playback preempted", "current", r.String(), "next", next.String())
		s.out.Stop()
		return true, &next
	default:
		s.log.Debug("playback request ignored", "current", r.String(), "ignored", next.String())
		return false, nil
	}
}
