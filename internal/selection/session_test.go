package selection

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func bookedSet(ids ...string) func(string) bool {
	return func(id string) bool { return slices.Contains(ids, id) }
}

func TestToggleAddRemove(t *testing.T) {
	s := NewSession(Config{}, nil, nil, nil)

	seats, err := s.Toggle("1A", nil)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !slices.Equal(seats, []string{"1A"}) {
		t.Fatalf("seats = %v, want [1A]", seats)
	}

	seats, err = s.Toggle("1A", nil)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(seats) != 0 {
		t.Fatalf("seats = %v, want empty", seats)
	}
}

func TestToggleBookedSeatIsNoOp(t *testing.T) {
	s := NewSession(Config{}, nil, nil, nil)

	seats, err := s.Toggle("2B", bookedSet("2B"))
	if err != nil {
		t.Fatalf("booked toggle should not error, got %v", err)
	}
	if len(seats) != 0 {
		t.Fatalf("booked seat must never enter the selection, got %v", seats)
	}
}

func TestToggleCapacity(t *testing.T) {
	s := NewSession(Config{MaxSeats: 6}, nil, nil, nil)

	six := []string{"1A", "1B", "1C", "2A", "2B", "2C"}
	for _, id := range six {
		if _, err := s.Toggle(id, nil); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}

	seats, err := s.Toggle("3A", nil)

	var capErr CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("7th toggle-on should return CapacityError, got %v", err)
	}
	if !slices.Equal(seats, six) {
		t.Fatalf("prior six must be unchanged, got %v", seats)
	}

	// Toggling one of the six off still works at capacity.
	seats, err = s.Toggle("1A", nil)
	if err != nil {
		t.Fatalf("toggle off at capacity: %v", err)
	}
	if len(seats) != 5 {
		t.Fatalf("seats = %v, want 5 members", seats)
	}
}

func TestCountdownExpiresOnce(t *testing.T) {
	var notices atomic.Int32
	done := make(chan []string, 4)

	s := NewSession(Config{TTL: 30 * time.Millisecond}, nil, nil, func(seats []string) {
		notices.Add(1)
		done <- seats
	})

	// Several changes in a row; only the last countdown may fire.
	for _, id := range []string{"1A", "1B", "1C"} {
		if _, err := s.Toggle(id, nil); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}

	select {
	case seats := <-done:
		if !slices.Equal(seats, []string{"1A", "1B", "1C"}) {
			t.Fatalf("expired seats = %v", seats)
		}
	case <-time.After(time.Second):
		t.Fatal("countdown never fired")
	}

	if got := s.Seats(); len(got) != 0 {
		t.Fatalf("expiry must clear the selection, got %v", got)
	}

	time.Sleep(80 * time.Millisecond)
	if n := notices.Load(); n != 1 {
		t.Fatalf("expected exactly one expiry notice, got %d", n)
	}
}

func TestCompleteCancelsCountdown(t *testing.T) {
	var notices atomic.Int32

	s := NewSession(Config{TTL: 20 * time.Millisecond}, nil, nil, func([]string) {
		notices.Add(1)
	})

	if _, err := s.Toggle("1A", nil); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	s.Complete()

	time.Sleep(60 * time.Millisecond)
	if n := notices.Load(); n != 0 {
		t.Fatalf("completed session must not expire, got %d notices", n)
	}
	if got := s.Seats(); len(got) != 0 {
		t.Fatalf("complete must clear the selection, got %v", got)
	}
}

func TestPublishSuperseded(t *testing.T) {
	var mu sync.Mutex
	var cancelled []bool
	published := make(chan struct{}, 8)

	publish := func(ctx context.Context, seats []string) {
		published <- struct{}{}
		<-ctx.Done()
		mu.Lock()
		cancelled = append(cancelled, true)
		mu.Unlock()
	}

	s := NewSession(Config{TTL: time.Minute}, publish, nil, nil)

	if _, err := s.Toggle("1A", nil); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	<-published
	if _, err := s.Toggle("1B", nil); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	<-published

	// The first publish must have been cancelled by the second.
	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(cancelled)
		mu.Unlock()
		if n >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("superseded publish was never cancelled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Complete()
}

func TestEmptySelectionReleasesHold(t *testing.T) {
	released := make(chan struct{}, 1)

	s := NewSession(Config{TTL: time.Minute}, nil, func(context.Context) {
		released <- struct{}{}
	}, nil)

	if _, err := s.Toggle("1A", nil); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.Toggle("1A", nil); err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("emptying the selection must release the hold")
	}
}

func TestManagerReusesSession(t *testing.T) {
	m := NewManager(Config{})

	a := m.Get(1, "BUS-001", nil, nil, nil)
	b := m.Get(1, "BUS-001", nil, nil, nil)
	if a != b {
		t.Fatal("same (user, bus) must map to the same session")
	}

	c := m.Get(2, "BUS-001", nil, nil, nil)
	if a == c {
		t.Fatal("different users must not share a session")
	}

	m.Remove(1, "BUS-001")
	if _, ok := m.Lookup(1, "BUS-001"); ok {
		t.Fatal("removed session still present")
	}
}
