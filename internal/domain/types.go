package domain

import (
	"time"

	"github.com/google/uuid"
)

type SeatState string

const (
	SeatBooked    SeatState = "booked"
	SeatSelected  SeatState = "selected"
	SeatAvailable SeatState = "available"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

type Bus struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Departure   time.Time  `json:"departure"`
	Arrival     time.Time  `json:"arrival"`
	Fare        float64    `json:"fare"`
	TotalSeats  int        `json:"totalSeats"`
	SeatLayout  string     `json:"seatLayout"` // "L+R", e.g. "2+1"
	Type        string     `json:"type"`
	Operator    string     `json:"operator"`
	BusNumber   string     `json:"busNumber"`
	Rating      float64    `json:"rating"`
	Amenities   []string   `json:"amenities"`
	BookedSeats []string   `json:"bookedSeats"`
	Delay       *DelayInfo `json:"delayInfo,omitempty"`
}

type DelayInfo struct {
	Minutes   int       `json:"delayMinutes"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DelayRecord is one entry of the admin delay history.
type DelayRecord struct {
	ID        int64     `json:"id"`
	BusID     string    `json:"busId"`
	BusName   string    `json:"busName"`
	Minutes   int       `json:"delayMinutes"`
	Reason    string    `json:"reason"`
	Cleared   bool      `json:"cleared"`
	CreatedAt time.Time `json:"createdAt"`
}

type Coupon struct {
	ID          int64        `json:"id"`
	Code        string       `json:"code"`
	Discount    float64      `json:"discount"`
	Kind        DiscountKind `json:"type"`
	MinAmount   float64      `json:"minAmount"`
	MaxDiscount float64      `json:"maxDiscount,omitempty"`
	Description string       `json:"description,omitempty"`
	Active      bool         `json:"isActive"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
}

type Payment struct {
	TotalAmount float64 `json:"totalAmount"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"finalAmount"`
	Method      string  `json:"method"`
	Status      string  `json:"status"`
}

// BusSnapshot is the denormalized copy of bus fields captured at booking
// time, so later bus edits do not alter historical bookings.
type BusSnapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Departure time.Time  `json:"departure"`
	Arrival   time.Time  `json:"arrival"`
	Operator  string     `json:"operator"`
	BusNumber string     `json:"busNumber"`
	Delay     *DelayInfo `json:"delayInfo,omitempty"`
}

type Cancellation struct {
	Reason           string    `json:"reason"`
	RefundAmount     float64   `json:"refundAmount"`
	RefundPercentage int       `json:"refundPercentage"`
	CancelledAt      time.Time `json:"cancelledAt"`
}

type Booking struct {
	ID           uuid.UUID     `json:"id"`
	UserID       int64         `json:"userId"`
	UserName     string        `json:"userName"`
	UserEmail    string        `json:"userEmail"`
	BusDetails   BusSnapshot   `json:"busDetails"`
	Seats        []string      `json:"seats"`
	Payment      Payment       `json:"payment"`
	Status       BookingStatus `json:"status"`
	Cancellation *Cancellation `json:"cancellation,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// User is the identity carried by a verified bearer token. Account
// management itself is an external collaborator.
type User struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

func (u User) IsAdmin() bool { return u.Role == "admin" }
