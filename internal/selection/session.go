// Package selection owns the seat-selection session for one user on one
// bus: the ordered seat set, its capacity bound, and the hold countdown
// that releases the selection when it runs out.
package selection

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	DefaultMaxSeats = 6
	DefaultTTL      = 10 * time.Minute
)

// CapacityError rejects a toggle-on past the selection bound.
type CapacityError struct {
	Max int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("maximum %d seats can be selected", e.Max)
}

// PublishFunc pushes the full current selection to the hold backend. It is
// fire-and-forget: it runs on its own goroutine and its context is
// cancelled as soon as a newer selection supersedes it.
type PublishFunc func(ctx context.Context, seats []string)

// ReleaseFunc drops the backend hold when the selection empties out.
type ReleaseFunc func(ctx context.Context)

// ExpireFunc is invoked exactly once per selection lifetime, when the
// countdown clears a non-empty selection.
type ExpireFunc func(seats []string)

type Config struct {
	MaxSeats int
	TTL      time.Duration
}

// Session is the seat-hold state machine. A single countdown is live at a
// time; every selection change supersedes the previous countdown and the
// previous in-flight publish (last write wins, no queued timers).
type Session struct {
	mu sync.Mutex

	cfg      Config
	publish  PublishFunc
	release  ReleaseFunc
	onExpire ExpireFunc

	seats []string
	timer *time.Timer
	gen   uint64

	cancelPublish context.CancelFunc
}

func NewSession(cfg Config, publish PublishFunc, release ReleaseFunc, onExpire ExpireFunc) *Session {
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = DefaultMaxSeats
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	return &Session{
		cfg:      cfg,
		publish:  publish,
		release:  release,
		onExpire: onExpire,
	}
}

// Toggle flips seatID in the selection. Toggling a booked seat is a silent
// no-op. Adding past the capacity bound returns CapacityError and leaves
// the selection unchanged. Any non-empty result re-issues the hold and
// restarts the countdown; an empty result releases both.
func (s *Session) Toggle(seatID string, isBooked func(string) bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isBooked != nil && isBooked(seatID) {
		return slices.Clone(s.seats), nil
	}

	if i := slices.Index(s.seats, seatID); i >= 0 {
		s.seats = slices.Delete(s.seats, i, i+1)
	} else {
		if len(s.seats) >= s.cfg.MaxSeats {
			return slices.Clone(s.seats), CapacityError{Max: s.cfg.MaxSeats}
		}
		s.seats = append(s.seats, seatID)
	}

	s.onChangeLocked()

	return slices.Clone(s.seats), nil
}

// Replace swaps in a whole selection at once, with the same bound, hold and
// countdown behavior as Toggle. Used when the caller already assembled the
// full seat list.
func (s *Session) Replace(seats []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(seats) > s.cfg.MaxSeats {
		return slices.Clone(s.seats), CapacityError{Max: s.cfg.MaxSeats}
	}

	s.seats = slices.Clone(seats)
	s.onChangeLocked()

	return slices.Clone(s.seats), nil
}

// Seats returns a copy of the current selection.
func (s *Session) Seats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.seats)
}

// Complete ends the session after a successful booking: the countdown is
// cancelled and the selection cleared without an expiry notice.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.seats = nil
}

// Close tears the session down (view navigated away). Releases the backend
// hold; late publish responses are discarded via context cancellation.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	release := s.release
	s.stopLocked()
	s.seats = nil
	s.mu.Unlock()

	if release != nil {
		release(ctx)
	}
}

func (s *Session) onChangeLocked() {
	s.stopLocked()

	if len(s.seats) == 0 {
		if s.release != nil {
			go s.release(context.Background())
		}
		return
	}

	if s.publish != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelPublish = cancel
		go s.publish(ctx, slices.Clone(s.seats))
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.cfg.TTL, func() { s.expire(gen) })
}

// stopLocked supersedes the live countdown and any in-flight publish. It
// bumps the generation so a timer that already fired cannot expire a newer
// selection.
func (s *Session) stopLocked() {
	s.gen++

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.cancelPublish != nil {
		s.cancelPublish()
		s.cancelPublish = nil
	}
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()

	if gen != s.gen || len(s.seats) == 0 {
		s.mu.Unlock()
		return
	}

	expired := s.seats
	s.seats = nil
	s.timer = nil
	if s.cancelPublish != nil {
		s.cancelPublish()
		s.cancelPublish = nil
	}
	onExpire := s.onExpire
	release := s.release

	s.mu.Unlock()

	if release != nil {
		release(context.Background())
	}

	if onExpire != nil {
		onExpire(expired)
	}
}
