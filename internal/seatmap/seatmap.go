// Package seatmap turns a bus seat-layout descriptor into a 2-D grid of
// seat slots. It is pure: seat state is computed from the booked and
// selected sets, never stored.
package seatmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bookmyseat/bms-go/internal/domain"
)

// Layout is a parsed "L+R" descriptor: seats per row left and right of
// the aisle.
type Layout struct {
	Left  int
	Right int
}

func (l Layout) Columns() int { return l.Left + l.Right }

type InvalidLayoutError struct {
	Descriptor string
}

func (e InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid seat layout %q", e.Descriptor)
}

// ParseLayout parses a descriptor like "2+1". A layout that resolves to
// zero columns is a configuration error, not a divide-by-zero later.
func ParseLayout(descriptor string) (Layout, error) {
	parts := strings.Split(descriptor, "+")
	if len(parts) != 2 {
		return Layout{}, InvalidLayoutError{Descriptor: descriptor}
	}

	left, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || left < 0 {
		return Layout{}, InvalidLayoutError{Descriptor: descriptor}
	}

	right, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || right < 0 {
		return Layout{}, InvalidLayoutError{Descriptor: descriptor}
	}

	if left+right == 0 {
		return Layout{}, InvalidLayoutError{Descriptor: descriptor}
	}

	return Layout{Left: left, Right: right}, nil
}

// Slot is one cell of the grid: either an aisle marker or a seat.
type Slot struct {
	Aisle bool             `json:"isAisle,omitempty"`
	ID    string           `json:"number,omitempty"`
	State domain.SeatState `json:"state,omitempty"`
}

type Row []Slot

// Generate produces the seat grid for a bus. Rows = ceil(totalSeats/columns);
// seat ids are {row}{columnLetter} with letters assigned left to right
// starting at 'A', skipping the aisle. Emission stops once totalSeats seats
// have been produced, so the final row may be partial. A seat in the booked
// set is booked regardless of selection.
func Generate(descriptor string, totalSeats int, booked, selected []string) ([]Row, error) {
	layout, err := ParseLayout(descriptor)
	if err != nil {
		return nil, err
	}

	if totalSeats <= 0 {
		return nil, fmt.Errorf("total seats must be positive, got %d", totalSeats)
	}

	bookedSet := toSet(booked)
	selectedSet := toSet(selected)

	cols := layout.Columns()
	rowCount := (totalSeats + cols - 1) / cols

	emitted := 0
	out := make([]Row, 0, rowCount)

	for row := 1; row <= rowCount; row++ {
		var r Row

		for col := 1; col <= layout.Left && emitted < totalSeats; col++ {
			r = append(r, seatSlot(row, col, bookedSet, selectedSet))
			emitted++
		}

		r = append(r, Slot{Aisle: true})

		for col := layout.Left + 1; col <= cols && emitted < totalSeats; col++ {
			r = append(r, seatSlot(row, col, bookedSet, selectedSet))
			emitted++
		}

		out = append(out, r)
	}

	return out, nil
}

// ValidSeatIDs returns the full seat-identifier space for a bus. Booked sets
// are validated against this before they reach storage.
func ValidSeatIDs(descriptor string, totalSeats int) (map[string]struct{}, error) {
	rows, err := Generate(descriptor, totalSeats, nil, nil)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, totalSeats)
	for _, r := range rows {
		for _, s := range r {
			if !s.Aisle {
				ids[s.ID] = struct{}{}
			}
		}
	}

	return ids, nil
}

func seatSlot(row, col int, booked, selected map[string]struct{}) Slot {
	id := SeatID(row, col)

	state := domain.SeatAvailable
	if _, ok := booked[id]; ok {
		state = domain.SeatBooked
	} else if _, ok := selected[id]; ok {
		state = domain.SeatSelected
	}

	return Slot{ID: id, State: state}
}

// SeatID formats a seat identifier like "3B" (1-based row and column).
func SeatID(row, col int) string {
	return fmt.Sprintf("%d%c", row, 'A'+col-1)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
