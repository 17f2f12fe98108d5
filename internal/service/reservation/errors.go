package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrBusNotFound     = errors.New("bus not found")
	ErrNoSeatsSelected = errors.New("no seats selected")
	ErrBusFull         = errors.New("bus is full")
	ErrSeatsHeld       = errors.New("some seats are held by another user")
)

// SeatsTakenError carries the seats the backend rejected, so the message
// reaches the user verbatim.
type SeatsTakenError struct {
	SeatIDs []string
}

func (e SeatsTakenError) Error() string {
	return fmt.Sprintf("seats already booked: %v", e.SeatIDs)
}

// InvalidSeatError rejects a seat id outside the bus layout.
type InvalidSeatError struct {
	SeatID string
}

func (e InvalidSeatError) Error() string {
	return fmt.Sprintf("seat %s does not exist on this bus", e.SeatID)
}
